package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-wave/common"
	"github.com/go-gl/mathgl/mgl32"
)

// ClipSpace identifies the depth range a projection matrix maps the view volume into.
type ClipSpace int

const (
	// ClipSpaceZeroToOne maps depth to [0, 1] (WebGPU, Vulkan, Direct3D).
	ClipSpaceZeroToOne ClipSpace = iota

	// ClipSpaceNegOneToOne maps depth to [-1, 1] (OpenGL).
	ClipSpaceNegOneToOne
)

// maxPitch keeps the eye from flipping over the top of the grid.
const maxPitch = math.Pi / 2

type cameraImpl struct {
	mu *sync.Mutex

	fov    float32
	aspect float32
	near   float32
	far    float32

	distance float32
	pitch    float32
	heading  float32
	offset   mgl32.Vec3
}

// Camera is a fixed orbit camera: it looks at the origin from a distance, tilted by a pitch
// angle and turned by a heading angle, with the scene shifted by an offset.
// The view transform is T(0, 0, -distance) * Rx(pitch) * Ry(heading) * T(offset).
type Camera interface {
	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// Distance returns the distance from the eye to the orbit center.
	Distance() float32

	// Pitch returns the rotation about X in radians.
	Pitch() float32

	// Heading returns the rotation about Y in radians.
	Heading() float32

	// SetAspect sets the aspect ratio, typically on window resize.
	// Non-positive ratios are ignored.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// SetViewport sets the aspect ratio from a framebuffer size. Zero sizes are ignored.
	//
	// Parameters:
	//   - width, height: framebuffer size in pixels
	SetViewport(width, height int)

	// SetOrbit sets distance, pitch and heading at once. Pitch is clamped to [-90°, 90°] and
	// distance to the clip range so the grid stays visible.
	//
	// Parameters:
	//   - distance: eye distance from the orbit center
	//   - pitch: rotation about X in radians
	//   - heading: rotation about Y in radians
	SetOrbit(distance, pitch, heading float32)

	// ViewMatrix returns the world to eye transform.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix (column-major)
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the perspective projection for the given clip space.
	//
	// Parameters:
	//   - clip: the depth convention of the target API
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix (column-major)
	ProjectionMatrix(clip ClipSpace) mgl32.Mat4

	// Eye returns the eye position in world space.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Eye() mgl32.Vec3
}

var _ Camera = &cameraImpl{}

// NewCamera creates a Camera with the given options.
// Defaults: 45° field of view, aspect 1, near 1, far 1000, distance 7, pitch 30°, heading 0.
//
// Parameters:
//   - options: variadic list of CameraBuilderOption functions
//
// Returns:
//   - Camera: the configured camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		fov:      mgl32.DegToRad(45),
		aspect:   1,
		near:     1,
		far:      1000,
		distance: 7,
		pitch:    mgl32.DegToRad(30),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Distance() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.distance
}

func (c *cameraImpl) Pitch() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pitch
}

func (c *cameraImpl) Heading() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.heading
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
}

func (c *cameraImpl) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.SetAspect(float32(width) / float32(height))
}

func (c *cameraImpl) SetOrbit(distance, pitch, heading float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setOrbit(distance, pitch, heading)
}

// setOrbit stores a clamped orbit. Caller holds c.mu or owns c exclusively.
func (c *cameraImpl) setOrbit(distance, pitch, heading float32) {
	c.distance = common.Clamp(distance, c.near, c.far)
	c.pitch = common.Clamp(pitch, -maxPitch, maxPitch)
	c.heading = heading
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix()
}

func (c *cameraImpl) viewMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(0, 0, -c.distance).
		Mul4(mgl32.HomogRotate3DX(c.pitch)).
		Mul4(mgl32.HomogRotate3DY(c.heading)).
		Mul4(mgl32.Translate3D(c.offset[0], c.offset[1], c.offset[2]))
}

func (c *cameraImpl) ProjectionMatrix(clip ClipSpace) mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if clip == ClipSpaceNegOneToOne {
		return common.PerspectiveGL(c.fov, c.aspect, c.near, c.far)
	}
	return common.Perspective(c.fov, c.aspect, c.near, c.far)
}

func (c *cameraImpl) Eye() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()

	inv := c.viewMatrix().Inv()
	return inv.Col(3).Vec3()
}
