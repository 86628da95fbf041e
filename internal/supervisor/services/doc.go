// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package services provides suture.Service wrappers for Cinematch components.

Each wrapper translates a component lifecycle into suture's context-aware
Serve pattern and implements fmt.Stringer so supervisor events name it.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - http.ErrServerClosed is treated as a clean exit

Context Runner (RunnerService):
  - Wraps any component exposing RunWithContext(ctx) error
  - Used for the cache maintainer and the event recorder
  - A clean return while the context is still live is reported as an error
    so that the supervisor restarts the component
*/
package services
