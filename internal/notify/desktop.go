package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	name, args, ok := desktopCommand(runtime.GOOS, n)
	if !ok {
		return nil
	}
	return exec.Command(name, args...).Run()
}

func desktopCommand(goos string, n Notification) (string, []string, bool) {
	switch goos {
	case "linux":
		urgency := "normal"
		if n.Level == LevelHigh {
			urgency = "critical"
		}
		return "notify-send", []string{"-u", urgency, n.Title, n.Body}, true
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return "osascript", []string{"-e", script}, true
	default:
		return "", nil, false
	}
}

func escapeAppleScript(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
