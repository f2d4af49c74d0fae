// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/frameloop/atlas"
	"github.com/gogpu/frameloop/quad"
)

// ErrNoTarget is returned by Present before SetTarget has been called.
var ErrNoTarget = errors.New("render: presenter has no target view")

// viewportUniformSize is the byte size of the viewport uniform buffer:
// one vec4<f32> holding the viewport size in xy.
const viewportUniformSize = 16

// gpuWaitTimeout bounds the fence wait after each submit.
const gpuWaitTimeout = 5 * time.Second

// HALPresenterConfig configures a HALPresenter.
type HALPresenterConfig struct {
	// Device and Queue are the HAL handles, typically from
	// HALFromProvider. Required.
	Device hal.Device
	Queue  hal.Queue

	// Format is the target view's texture format. Zero selects
	// BGRA8Unorm, the common surface format.
	Format gputypes.TextureFormat

	// Width, Height is the initial viewport in pixels. Required.
	Width, Height uint32
}

// HALPresenter draws the quad pool onto a HAL texture view through a
// single textured-quad pipeline. One instance serves one window; the host
// calls SetTarget with the surface's current view before each Present.
type HALPresenter struct {
	device hal.Device
	queue  hal.Queue

	width  uint32
	height uint32

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	sampler    hal.Sampler
	uniformBuf hal.Buffer

	// bindGroup references the atlas texture view and is rebuilt
	// whenever the atlas generation moves.
	bindGroup hal.BindGroup
	atlasGen  uint64

	target hal.TextureView
}

var _ Presenter = (*HALPresenter)(nil)

// NewHALPresenter compiles the quad shader and creates the render
// pipeline. The caller owns the device and queue; Destroy releases
// everything the presenter created.
func NewHALPresenter(cfg HALPresenterConfig) (*HALPresenter, error) {
	if cfg.Device == nil || cfg.Queue == nil {
		return nil, errors.New("render: HALPresenterConfig requires Device and Queue")
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("render: viewport %dx%d is not positive", cfg.Width, cfg.Height)
	}
	format := cfg.Format
	if format == gputypes.TextureFormatUndefined {
		format = gputypes.TextureFormatBGRA8Unorm
	}

	p := &HALPresenter{
		device: cfg.Device,
		queue:  cfg.Queue,
		width:  cfg.Width,
		height: cfg.Height,
	}
	if err := p.createPipeline(format); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func (p *HALPresenter) createPipeline(format gputypes.TextureFormat) error {
	spirv, err := compileWGSL(quadShaderSource)
	if err != nil {
		return fmt.Errorf("quad shader: %w", err)
	}

	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "frameloop_quad_shader",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("create quad shader module: %w", err)
	}
	p.shader = shader

	// Bind group layout:
	//   Binding 0: Viewport (uniform buffer, vertex)
	//   Binding 1: atlas texture (texture_2d, fragment)
	//   Binding 2: sampler (fragment)
	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "frameloop_quad_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create quad bind layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "frameloop_quad_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create quad pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	sampler, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "frameloop_quad_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("create quad sampler: %w", err)
	}
	p.sampler = sampler

	uniformBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "frameloop_viewport_uniform",
		Size:  viewportUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create viewport uniform: %w", err)
	}
	p.uniformBuf = uniformBuf
	p.writeViewport()

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "frameloop_quad_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    quadVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create quad pipeline: %w", err)
	}
	p.pipeline = pipeline
	return nil
}

// quadVertexLayout returns the vertex buffer layout for the quad
// pipeline. Matches VertexInput in quad.wgsl and quad.Vertex's memory
// layout:
//
//	location 0: position  (vec2<f32>)
//	location 1: tex_coord (vec2<f32>)
//	location 2: color     (vec4<f32>)
func quadVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: quad.VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
			},
		},
	}
}

// SetTarget points the presenter at the view to draw into, typically the
// window surface's current frame. Size changes rewrite the viewport
// uniform.
func (p *HALPresenter) SetTarget(view hal.TextureView, width, height uint32) {
	p.target = view
	if width != p.width || height != p.height {
		p.width, p.height = width, height
		p.writeViewport()
	}
}

func (p *HALPresenter) writeViewport() {
	buf := make([]byte, viewportUniformSize)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(float32(p.width)))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(float32(p.height)))
	p.queue.WriteBuffer(p.uniformBuf, 0, buf)
}

// ensureBindGroup rebuilds the bind group when the atlas texture changed
// underneath it.
func (p *HALPresenter) ensureBindGroup(atl *atlas.Atlas) error {
	gen := atl.Generation()
	if p.bindGroup != nil && gen == p.atlasGen {
		return nil
	}
	view := atl.View()
	if view == nil {
		return errors.New("render: atlas has no GPU texture")
	}
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "frameloop_quad_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: p.uniformBuf.NativeHandle(), Offset: 0, Size: viewportUniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: gputypes.TextureViewHandle(view.NativeHandle()),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: gputypes.SamplerHandle(p.sampler.NativeHandle()),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create quad bind group: %w", err)
	}
	p.bindGroup = bindGroup
	p.atlasGen = gen
	return nil
}

// Present records one render pass drawing every layer of the pool, back
// to front, and submits it with a fence wait. The pool's buffers must be
// synced first (Session.Draw does this).
func (p *HALPresenter) Present(pool *quad.Pool, atl *atlas.Atlas) error {
	if p.target == nil {
		return ErrNoTarget
	}
	if err := p.ensureBindGroup(atl); err != nil {
		return err
	}

	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "frameloop_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("frameloop_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "frameloop_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       p.target,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})

	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, p.bindGroup, nil)
	for _, layer := range pool.Layers() {
		if layer.QuadCount() == 0 || layer.VertexBuffer() == nil {
			continue
		}
		rp.SetVertexBuffer(0, layer.VertexBuffer(), 0)
		rp.SetIndexBuffer(layer.IndexBuffer(), gputypes.IndexFormatUint16, 0)
		rp.DrawIndexed(uint32(layer.QuadCount()*6), 1, 0, 0, 0) //nolint:gosec // quad counts are bounded by the pool's max capacity
	}
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer p.device.FreeCommandBuffer(cmdBuf)

	fence, err := p.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer p.device.DestroyFence(fence)

	if err := p.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := p.device.Wait(fence, 1, gpuWaitTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}
	return nil
}

// Destroy releases all GPU resources in reverse creation order. Safe to
// call on a partially constructed presenter.
func (p *HALPresenter) Destroy() {
	if p.device == nil {
		return
	}
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.uniformBuf != nil {
		p.device.DestroyBuffer(p.uniformBuf)
		p.uniformBuf = nil
	}
	if p.sampler != nil {
		p.device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
