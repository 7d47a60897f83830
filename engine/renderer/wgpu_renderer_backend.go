package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-wave/common"
	"github.com/Carmen-Shannon/oxy-wave/engine/camera"
	"github.com/Carmen-Shannon/oxy-wave/engine/grid"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// minStreamSize is the initial capacity of the per-frame streaming buffers.
const minStreamSize = 256 * 1024

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)
	sampleCount MSAASampleCount  // MSAA sample count for the main render pass
	clearColor  wgpu.Color

	// Fill and wireframe pipelines share one layout and one globals bind group.
	fillPipeline    *wgpu.RenderPipeline
	linePipeline    *wgpu.RenderPipeline
	globalsBuffer   *wgpu.Buffer
	globalsBindGrp  *wgpu.BindGroup
	globals         GPUGlobals
	fillMode        FillMode
	globalsModified bool

	// Immediate and client-array draws stream their data through these each frame.
	vertexStream *streamBuffer
	indexStream  *streamBuffer

	// Client arrays are uploaded once per frame and reused by every strip drawn from them.
	clientSource unsafe.Pointer
	clientLen    int
	clientBuffer *wgpu.Buffer
	clientOffset uint64

	// Frame state for batched rendering across multiple draw calls
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

// wgpuMeshBuffers is the WebGPU rendition of a buffer object: the host writes into a
// mappable staging buffer which is copied into the device-local vertex buffer on unmap.
type wgpuMeshBuffers struct {
	vertex  *wgpu.Buffer
	staging *wgpu.Buffer
	index   *wgpu.Buffer
	size    uint64
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, clearColor [4]float64) (*wgpuRendererBackendImpl, error) {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: sampleCount,
		clearColor:  wgpu.Color{R: clearColor[0], G: clearColor[1], B: clearColor[2], A: clearColor[3]},
		globals: GPUGlobals{
			View:          mgl32.Ident4(),
			Projection:    mgl32.Ident4(),
			LightPosition: LightPosition,
			Params:        [4]float32{1, 0, 0, 0},
		},
		globalsModified: true,
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	capabilities := w.surface.GetCapabilities(w.adapter)
	if len(capabilities.Formats) == 0 {
		return nil, errors.New("surface reports no supported formats")
	}
	w.surfaceFormat = &capabilities.Formats[0]

	w.vertexStream = newStreamBuffer("Immediate Vertex Stream", wgpu.BufferUsageVertex)
	w.indexStream = newStreamBuffer("Client Index Stream", wgpu.BufferUsageIndex)

	if err := w.createPipelines(); err != nil {
		return nil, err
	}
	return w, nil
}

// createPipelines builds the globals uniform, its bind group and the fill and wireframe
// pipelines from the embedded grid shader.
func (b *wgpuRendererBackendImpl) createPipelines() error {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Grid Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: GridShaderSource,
		},
	})
	if err != nil {
		return fmt.Errorf("compile grid shader: %w", err)
	}
	defer module.Release()

	globalsSize := uint64(b.globals.Size())
	b.globalsBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Globals Buffer",
		Size:  globalsSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create globals buffer: %w", err)
	}

	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Globals Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: globalsSize,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create bind group layout for group 0: %w", err)
	}

	b.globalsBindGrp, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Globals Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  b.globalsBuffer,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create globals bind group: %w", err)
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Grid",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return err
	}

	b.fillPipeline, err = b.createRenderPipeline(module, pipelineLayout, "Grid Fill", wgpu.PrimitiveTopologyTriangleStrip)
	if err != nil {
		return err
	}
	b.linePipeline, err = b.createRenderPipeline(module, pipelineLayout, "Grid Wireframe", wgpu.PrimitiveTopologyLineStrip)
	return err
}

func (b *wgpuRendererBackendImpl) createRenderPipeline(module *wgpu.ShaderModule, layout *wgpu.PipelineLayout, label string, topology wgpu.PrimitiveTopology) (*wgpu.RenderPipeline, error) {
	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  label + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{gridVertexLayout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:         topology,
			StripIndexFormat: wgpu.IndexFormatUint32,
			FrontFace:        wgpu.FrontFaceCCW,
			CullMode:         wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline: %w", label, err)
	}
	return created, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseAttachments()

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if msaaEnabled {
		// Create the MSAA texture that the render pass draws into; the resolved
		// result is written to the swapchain view as the ResolveTarget.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		b.msaaTexture = msaaTexture
		b.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			panic(err)
		}
	}

	// Depth texture sample count must match the color attachment.
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTexture = depthTexture
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	// When MSAA is enabled, View is the MSAA texture and ResolveTarget is
	// set per-frame to the swapchain view. When disabled, View is set
	// per-frame to the swapchain view and ResolveTarget remains nil.
	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:          b.msaaTextureView,
				ResolveTarget: nil,
				LoadOp:        wgpu.LoadOpClear,
				StoreOp:       storeOp,
				ClearValue:    b.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

// releaseAttachments frees the size-dependent textures. Caller holds b.mu.
func (b *wgpuRendererBackendImpl) releaseAttachments() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTexture.Release()
		b.msaaTextureView, b.msaaTexture = nil, nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTexture.Release()
		b.depthTextureView, b.depthTexture = nil, nil
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) ClipSpace() camera.ClipSpace {
	return camera.ClipSpaceZeroToOne
}

func (b *wgpuRendererBackendImpl) SetCamera(view, projection mgl32.Mat4) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.globals.View = view
	b.globals.Projection = projection
	b.globalsModified = true
}

func (b *wgpuRendererBackendImpl) SetFillMode(mode FillMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fillMode = mode
}

func (b *wgpuRendererBackendImpl) SetLighting(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.globals.Params[0] = 0
	if enabled {
		b.globals.Params[0] = 1
	}
	b.globalsModified = true
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	if b.globalsModified {
		b.queue.WriteBuffer(b.globalsBuffer, 0, common.StructToBytes(&b.globals))
		b.globalsModified = false
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view
	b.clientSource = nil

	return nil
}

// bindPipeline selects the pipeline for the current fill mode. Caller holds b.mu.
func (b *wgpuRendererBackendImpl) bindPipeline() {
	if b.fillMode == FillModeLine {
		b.framePass.SetPipeline(b.linePipeline)
	} else {
		b.framePass.SetPipeline(b.fillPipeline)
	}
	b.framePass.SetBindGroup(0, b.globalsBindGrp, nil)
}

func (b *wgpuRendererBackendImpl) DrawImmediateStrip(vertices []grid.Vertex) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	data := common.SliceToBytes(vertices)
	buf, offset, err := b.vertexStream.write(b.device, b.queue, data)
	if err != nil {
		return err
	}

	b.bindPipeline()
	b.framePass.SetVertexBuffer(0, buf, offset, uint64(len(data)))
	b.framePass.Draw(uint32(len(vertices)), 1, 0, 0)
	return nil
}

func (b *wgpuRendererBackendImpl) DrawClientStrip(vertices []grid.Vertex, indices []uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	vertexData := common.SliceToBytes(vertices)
	src := unsafe.Pointer(unsafe.SliceData(vertices))
	if b.clientSource != src || b.clientLen != len(vertices) {
		buf, offset, err := b.vertexStream.write(b.device, b.queue, vertexData)
		if err != nil {
			return err
		}
		b.clientSource, b.clientLen = src, len(vertices)
		b.clientBuffer, b.clientOffset = buf, offset
	}

	indexData := common.SliceToBytes(indices)
	ibuf, ioffset, err := b.indexStream.write(b.device, b.queue, indexData)
	if err != nil {
		return err
	}

	b.bindPipeline()
	b.framePass.SetVertexBuffer(0, b.clientBuffer, b.clientOffset, uint64(len(vertexData)))
	b.framePass.SetIndexBuffer(ibuf, wgpu.IndexFormatUint32, ioffset, uint64(len(indexData)))
	b.framePass.DrawIndexed(uint32(len(indices)), 1, 0, 0, 0)
	return nil
}

func (b *wgpuRendererBackendImpl) CreateMeshBuffers(mesh *grid.Mesh) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	vertexData := common.SliceToBytes(mesh.Vertices)
	indexData := common.SliceToBytes(mesh.Indices)
	label := fmt.Sprintf("Grid %dx%d", mesh.Rows, mesh.Cols)

	vertex, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label + " Vertex Buffer",
		Size:             uint64(len(vertexData)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(vertex, 0, vertexData)

	// The staging buffer starts mapped so its initial contents match the device copy.
	staging, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label + " Staging Buffer",
		Size:             uint64(len(vertexData)),
		Usage:            wgpu.BufferUsageMapWrite | wgpu.BufferUsageCopySrc,
		MappedAtCreation: true,
	})
	if err != nil {
		vertex.Release()
		return nil, err
	}
	copy(staging.GetMappedRange(0, uint(len(vertexData))), vertexData)
	staging.Unmap()

	index, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label + " Index Buffer",
		Size:             uint64(len(indexData)),
		Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		vertex.Release()
		staging.Release()
		return nil, err
	}
	b.queue.WriteBuffer(index, 0, indexData)

	return &wgpuMeshBuffers{
		vertex:  vertex,
		staging: staging,
		index:   index,
		size:    uint64(len(vertexData)),
	}, nil
}

func (b *wgpuRendererBackendImpl) MapVertices(handle any) ([]byte, error) {
	mb := handle.(*wgpuMeshBuffers)

	b.mu.Lock()
	defer b.mu.Unlock()

	var status wgpu.BufferMapAsyncStatus
	err := mb.staging.MapAsync(wgpu.MapModeWrite, 0, mb.size, func(s wgpu.BufferMapAsyncStatus) {
		status = s
	})
	if err != nil {
		return nil, err
	}

	// Blocks until the previous frame's copy out of the staging buffer has completed.
	b.device.Poll(true, nil)
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, fmt.Errorf("map vertex staging buffer: status %v", status)
	}
	return mb.staging.GetMappedRange(0, uint(mb.size)), nil
}

func (b *wgpuRendererBackendImpl) UnmapVertices(handle any) error {
	mb := handle.(*wgpuMeshBuffers)

	b.mu.Lock()
	defer b.mu.Unlock()

	mb.staging.Unmap()

	// Submitted ahead of the frame's command buffer, so the copy lands before any draw reads it.
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()
	encoder.CopyBufferToBuffer(mb.staging, 0, mb.vertex, 0, mb.size)
	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("encode vertex upload: %w", err)
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) DrawBufferStrip(handle any, firstIndex, count int) error {
	mb := handle.(*wgpuMeshBuffers)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.bindPipeline()
	b.framePass.SetVertexBuffer(0, mb.vertex, 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(mb.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(count), 1, uint32(firstIndex), 0, 0)
	return nil
}

func (b *wgpuRendererBackendImpl) ReleaseMeshBuffers(handle any) {
	mb, ok := handle.(*wgpuMeshBuffers)
	if !ok || mb == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	mb.vertex.Release()
	mb.staging.Release()
	mb.index.Release()
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.frameSurface = nil
		b.frameView = nil
		return fmt.Errorf("encode frame: %w", err)
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil

	b.vertexStream.reset()
	b.indexStream.reset()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If no frame surface is held, nothing to present.
	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.vertexStream.release()
	b.indexStream.release()
	b.releaseAttachments()
	if b.fillPipeline != nil {
		b.fillPipeline.Release()
	}
	if b.linePipeline != nil {
		b.linePipeline.Release()
	}
	if b.globalsBindGrp != nil {
		b.globalsBindGrp.Release()
	}
	if b.globalsBuffer != nil {
		b.globalsBuffer.Release()
	}
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
}

// streamBuffer is a grow-only upload area for data that lives for one frame. Writes are
// appended at a cursor; when the current buffer is full a larger one replaces it and the old
// one is retired until the frame has been submitted.
type streamBuffer struct {
	label   string
	usage   wgpu.BufferUsage
	current *wgpu.Buffer
	size    uint64
	cursor  uint64
	retired []*wgpu.Buffer
}

func newStreamBuffer(label string, usage wgpu.BufferUsage) *streamBuffer {
	return &streamBuffer{
		label: label,
		usage: usage | wgpu.BufferUsageCopyDst,
	}
}

// write queues data into the stream and returns the buffer and offset it will occupy.
func (s *streamBuffer) write(device *wgpu.Device, queue *wgpu.Queue, data []byte) (*wgpu.Buffer, uint64, error) {
	n := align4(uint64(len(data)))
	if s.current == nil || s.cursor+n > s.size {
		size := max(s.size*2, n, minStreamSize)
		buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: s.label,
			Size:  size,
			Usage: s.usage,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("grow %s to %d bytes: %w", s.label, size, err)
		}
		if s.current != nil {
			s.retired = append(s.retired, s.current)
		}
		s.current, s.size, s.cursor = buf, size, 0
	}

	offset := s.cursor
	queue.WriteBuffer(s.current, offset, data)
	s.cursor += n
	return s.current, offset, nil
}

// reset rewinds the cursor once the frame using the stream has been submitted.
func (s *streamBuffer) reset() {
	for _, buf := range s.retired {
		buf.Release()
	}
	s.retired = s.retired[:0]
	s.cursor = 0
}

func (s *streamBuffer) release() {
	s.reset()
	if s.current != nil {
		s.current.Release()
		s.current = nil
	}
	s.size = 0
}

func align4(n uint64) uint64 {
	return (n + 3) &^ 3
}
