package graphics

// Surface is the rendering surface a Host inserted into the container. It
// owns the backing store and the GPU context that draws into it.
type Surface interface {
	Device() Device
	// SetBackingSize resizes the backing store in physical pixels.
	SetBackingSize(width, height int)
	BackingSize() (width, height int)
	// OnContextLost registers fn to run when the GPU context goes away.
	OnContextLost(fn func()) (remove func())
	// Remove detaches the surface from its container and releases the
	// context. Calling it more than once is a no-op.
	Remove()
}

// PixelReader is implemented by surfaces that can read back their backing
// store as tightly packed RGBA rows, bottom row first.
type PixelReader interface {
	ReadPixels() (pixels []byte, width, height int, err error)
}
