package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"golang.design/x/clipboard"
)

// copyToClipboard copies content to the system clipboard
func copyToClipboard(content string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.Init(); err != nil {
			return ClipboardCopyMsg{
				Success: false,
				Error:   fmt.Sprintf("Failed to initialize clipboard: %v", err),
			}
		}

		clipboard.Write(clipboard.FmtText, []byte(content))
		return ClipboardCopyMsg{Content: content, Success: true}
	}
}
