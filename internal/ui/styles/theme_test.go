// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewThemeVariants(t *testing.T) {
	dark := NewTheme("dark")
	if !dark.IsDark {
		t.Error("dark theme not marked dark")
	}
	light := NewTheme("light")
	if light.IsDark {
		t.Error("light theme marked dark")
	}
	// Unknown variants fall back to dark.
	if !NewTheme("").IsDark {
		t.Error("empty variant should default to dark")
	}
}

func TestSetSize(t *testing.T) {
	th := NewTheme("dark")
	th.SetSize(120, 40)
	if th.Width != 120 || th.Height != 40 {
		t.Errorf("size = %dx%d", th.Width, th.Height)
	}
}
