package game

import (
	"strings"
	"testing"
)

func TestRandomUsernameShape(t *testing.T) {
	for i := 0; i < 50; i++ {
		name := RandomUsername()
		if name == "" {
			t.Fatal("empty username")
		}
		parts := strings.Split(name, "-")
		if len(parts) != 3 {
			t.Fatalf("username %q; want adjective-noun-number", name)
		}
		if parts[0] == "" || parts[1] == "" || parts[2] == "" {
			t.Errorf("username %q has an empty part", name)
		}
	}
}
