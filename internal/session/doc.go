// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the single owned object a presentation binds to.
//
// A Session is constructed once per operator interaction. It exposes the
// observable state (current document, upload outcome, conversation log,
// pending input, last error) and the operations that change it. A
// presentation reads snapshots and invokes operations; it holds no logic of
// its own.
//
// # Key Types
//
//   - Session: composes the upload coordinator and conversation manager
//   - State: immutable snapshot for rendering
//   - Deps: the service collaborators a Session is built from
//
// # Usage
//
//	sess := session.New(session.Deps{
//	    Prober:     prober,
//	    Uploader:   client,
//	    Inquirer:   client,
//	    Classifier: classifier,
//	    Logger:     logger,
//	})
//	sess.OnChange(render)
//
//	if _, err := sess.SelectFile("brief.pdf"); err != nil {
//	    return err
//	}
//	if out := sess.Upload(ctx); out.Status == upload.StatusSucceeded {
//	    sess.Ask(ctx, "What is the verdict?")
//	}
package session
