// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/frameloop/atlas"
	"github.com/gogpu/frameloop/quad"
)

// Presenter submits a built frame to its destination. Session.Draw syncs
// the quad pool's GPU buffers and then calls Present once per frame.
type Presenter interface {
	// Present draws the pool's layers, back to front, sampling the
	// atlas. It is called after the pool's buffers are synced.
	Present(pool *quad.Pool, atl *atlas.Atlas) error
}

// NullPresenter is a Presenter that only counts frames. It backs
// headless sessions: geometry is still built, cached, and synced, but
// nothing reaches a GPU.
type NullPresenter struct {
	// Presents is the number of Present calls so far.
	Presents int

	// LastQuadCount is the pool quad count seen by the latest Present.
	LastQuadCount int
}

// Present records the call and succeeds.
func (p *NullPresenter) Present(pool *quad.Pool, _ *atlas.Atlas) error {
	p.Presents++
	p.LastQuadCount = pool.QuadCount()
	return nil
}

var _ Presenter = (*NullPresenter)(nil)
