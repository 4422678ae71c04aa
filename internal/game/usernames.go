package game

import (
	"fmt"
	"math/rand"
)

var usernameAdjectives = []string{
	"brave", "careful", "daring", "eager", "gentle", "hasty", "keen",
	"lucky", "nimble", "quiet", "rapid", "sly", "steady", "swift",
}

var usernameNouns = []string{
	"badger", "falcon", "fox", "lynx", "marten", "mole", "otter",
	"raven", "sapper", "scout", "stoat", "digger", "weasel", "wren",
}

// RandomUsername generates a fallback handle for joins that supply none.
func RandomUsername() string {
	return fmt.Sprintf("%s-%s-%02d",
		usernameAdjectives[rand.Intn(len(usernameAdjectives))],
		usernameNouns[rand.Intn(len(usernameNouns))],
		rand.Intn(100))
}
