// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the color palette and status rendering shared by
// casechat's terminal output.
//
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
// Every status helper prefixes an ASCII indicator ([OK], [X], [!], [i], [..])
// so meaning survives when color is disabled.
//
// # Usage
//
//	fmt.Println(styles.RenderSuccess("Uploaded brief.pdf"))
//	fmt.Println(styles.OperatorStyle.Render("You:"), question)
package styles
