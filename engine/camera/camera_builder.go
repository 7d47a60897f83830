package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraBuilderOption is a functional option for configuring a Camera.
type CameraBuilderOption func(*cameraImpl)

// WithFov sets the camera's vertical field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the camera's aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithClipPlanes sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance (> 0)
//   - far: far plane distance (> near)
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's clipping planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}

// WithOrbit sets the eye distance and the pitch and heading angles in degrees.
// The distance is clamped to the clip planes in effect when the option is applied.
//
// Parameters:
//   - distance: eye distance from the orbit center
//   - pitchDeg: rotation about X in degrees
//   - headingDeg: rotation about Y in degrees
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's orbit
func WithOrbit(distance, pitchDeg, headingDeg float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.setOrbit(distance, mgl32.DegToRad(pitchDeg), mgl32.DegToRad(headingDeg))
	}
}

// WithOffset translates the scene before the orbit rotation is applied.
//
// Parameters:
//   - x, y, z: scene offset
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's scene offset
func WithOffset(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.offset = mgl32.Vec3{x, y, z}
	}
}
