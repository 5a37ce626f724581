package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDesktopCommand(t *testing.T) {
	n := Notification{Title: `Say "hi"`, Body: "Due soon", Level: LevelHigh}

	name, args, ok := desktopCommand("linux", n)
	assert.True(t, ok)
	assert.Equal(t, "notify-send", name)
	assert.Equal(t, []string{"-u", "critical", `Say "hi"`, "Due soon"}, args)

	name, args, ok = desktopCommand("darwin", n)
	assert.True(t, ok)
	assert.Equal(t, "osascript", name)
	assert.Equal(t, []string{"-e", `display notification "Due soon" with title "Say \"hi\""`}, args)

	_, _, ok = desktopCommand("windows", n)
	assert.False(t, ok)
}
