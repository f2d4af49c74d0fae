// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render composes the frame loop's working parts into a Session
// that a frameloop.Controller can drive.
//
// A Session owns the texture atlas, the layered quad pool, and the shaped
// run cache, and builds frame geometry from two application-supplied
// sources: Content (panes of text lines and image attachments) and Chrome
// (tab bar and optional modal). It implements both
// frameloop.FrameRenderer and frameloop.RenderResources, so one Session
// value fills both slots of frameloop.Config.
//
// # Key Principle
//
// The session RECEIVES a GPU device from the host application, it does
// NOT create one. Hosts pass a DeviceHandle (the gpucontext.DeviceProvider
// of the surrounding app); a nil handle selects headless mode, in which
// the atlas is CPU-backed and Draw presents through a NullPresenter.
//
// # Usage
//
//	sess, err := render.New(render.Config{
//	    Content: myPanes,
//	    Chrome:  myChrome,
//	    Shaper:  shape.NewHarfbuzzShaper(),
//	    Width:   1280,
//	    Height:  720,
//	})
//	if err != nil { ... }
//	defer sess.Close()
//
//	ctrl, err := frameloop.NewController(frameloop.Config{
//	    Renderer:  sess,
//	    Resources: sess,
//	    Host:      myWindow,
//	})
//
// # Thread Safety
//
// A Session is owned by its window's event goroutine, like the Controller
// that drives it. None of its methods lock.
package render
