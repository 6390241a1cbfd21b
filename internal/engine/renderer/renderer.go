// Package renderer uploads chunk meshes to the GPU and draws them. Everything here
// must run on the thread that owns the GL context.
package renderer

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/voxelworld/internal/engine/shader"
	"github.com/Faultbox/voxelworld/internal/logger"
	"github.com/Faultbox/voxelworld/internal/voxel/chunk"
	"github.com/Faultbox/voxelworld/internal/voxel/mesh"
)

// ErrBufferAllocation is returned when the driver cannot create or fill a buffer.
var ErrBufferAllocation = errors.New("renderer: buffer allocation failed")

var skyColor = mgl32.Vec3{0.55, 0.72, 0.92}

const waterAlpha = 0.65

// buffer is one uploaded vertex stream.
type buffer struct {
	vao, vbo uint32
	count    int32
}

type gpuMesh struct {
	origin mgl32.Vec3
	opaque buffer
	water  buffer
}

// ChunkRenderer holds one GPU mesh per chunk position.
type ChunkRenderer struct {
	program     *shader.Program
	meshes      map[chunk.Pos]*gpuMesh
	fogDistance float32
	width       int
	height      int
	log         *zap.Logger
	vertexCount int
}

// New initializes GL and compiles the chunk shader.
// Must be called after the GL context is created.
func New(width, height int, fogDistance float32) (*ChunkRenderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	r := &ChunkRenderer{
		meshes:      make(map[chunk.Pos]*gpuMesh),
		fogDistance: fogDistance,
		log:         logger.Named("renderer"),
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	var err error
	r.program, err = shader.Compile(chunkVertexShader, chunkFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("chunk shader: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(skyColor[0], skyColor[1], skyColor[2], 1)

	r.program.Use()
	r.program.SetVec3Array("uPalette", Palette())
	r.program.SetVec3("uFogColor", skyColor)
	r.program.SetFloat("uFogDistance", fogDistance)

	r.Resize(width, height)
	return r, nil
}

// Resize updates the viewport.
func (r *ChunkRenderer) Resize(width, height int) {
	r.width, r.height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Aspect returns the viewport aspect ratio.
func (r *ChunkRenderer) Aspect() float32 {
	if r.height == 0 {
		return 1
	}
	return float32(r.width) / float32(r.height)
}

// Begin clears the frame.
func (r *ChunkRenderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Upload replaces the GPU mesh for m.Pos. An empty mesh just frees the old one.
func (r *ChunkRenderer) Upload(m *mesh.Mesh) error {
	r.Remove(m.Pos)
	if m.Empty() {
		return nil
	}

	x, y, z := m.Pos.Origin()
	g := &gpuMesh{origin: mgl32.Vec3{float32(x), float32(y), float32(z)}}
	var err error
	if g.opaque, err = upload(m.Opaque); err != nil {
		return fmt.Errorf("chunk %s opaque: %w", m.Pos, err)
	}
	if g.water, err = upload(m.Water); err != nil {
		g.opaque.free()
		return fmt.Errorf("chunk %s water: %w", m.Pos, err)
	}
	r.meshes[m.Pos] = g
	r.vertexCount += int(g.opaque.count + g.water.count)
	return nil
}

func upload(words []uint64) (buffer, error) {
	var b buffer
	if len(words) == 0 {
		return b, nil
	}
	gl.GenVertexArrays(1, &b.vao)
	gl.GenBuffers(1, &b.vbo)
	if b.vao == 0 || b.vbo == 0 {
		b.free()
		return buffer{}, ErrBufferAllocation
	}

	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(words)*8, gl.Ptr(&words[0]), gl.STATIC_DRAW)
	if gl.GetError() == gl.OUT_OF_MEMORY {
		gl.BindVertexArray(0)
		b.free()
		return buffer{}, ErrBufferAllocation
	}
	gl.VertexAttribIPointer(0, 2, gl.UNSIGNED_INT, 8, nil)
	gl.EnableVertexAttribArray(0)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	b.count = int32(len(words))
	return b, nil
}

func (b *buffer) free() {
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
	}
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
	}
	*b = buffer{}
}

func (b *buffer) draw() {
	if b.count == 0 {
		return
	}
	gl.BindVertexArray(b.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, b.count)
}

// Remove frees the GPU mesh at pos, if any.
func (r *ChunkRenderer) Remove(pos chunk.Pos) {
	g, ok := r.meshes[pos]
	if !ok {
		return
	}
	r.vertexCount -= int(g.opaque.count + g.water.count)
	g.opaque.free()
	g.water.free()
	delete(r.meshes, pos)
}

// Draw renders every uploaded chunk: opaque pass first, then water blended on top.
func (r *ChunkRenderer) Draw(viewProj mgl32.Mat4, camera mgl32.Vec3) {
	r.program.Use()
	r.program.SetMat4("uViewProj", viewProj)
	r.program.SetVec3("uCamera", camera)

	r.program.SetFloat("uAlpha", 1)
	for _, g := range r.meshes {
		r.program.SetVec3("uOrigin", g.origin)
		g.opaque.draw()
	}

	gl.Enable(gl.BLEND)
	gl.DepthMask(false)
	gl.Disable(gl.CULL_FACE)
	r.program.SetFloat("uAlpha", waterAlpha)
	for _, g := range r.meshes {
		r.program.SetVec3("uOrigin", g.origin)
		g.water.draw()
	}
	gl.Enable(gl.CULL_FACE)
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
	gl.BindVertexArray(0)
}

// Stats returns the number of uploaded chunks and vertices.
func (r *ChunkRenderer) Stats() (chunks, vertices int) {
	return len(r.meshes), r.vertexCount
}

// Close frees all GPU resources.
func (r *ChunkRenderer) Close() {
	r.log.Info("closing renderer", zap.Int("chunks", len(r.meshes)))
	for pos := range r.meshes {
		r.Remove(pos)
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// ReadPixels returns the current back buffer as bottom-up RGBA rows.
func (r *ChunkRenderer) ReadPixels() (pixels []byte, width, height int) {
	pixels = make([]byte, r.width*r.height*4)
	if len(pixels) == 0 {
		return pixels, r.width, r.height
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(r.width), int32(r.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&pixels[0]))
	return pixels, r.width, r.height
}
