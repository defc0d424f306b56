// Package server provides HTTP routing, middleware and a simulator for the remote camera device.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Logging] and [Recover] are provided.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with per-path method tables.
//
// # Device Simulator
//
// [DeviceHandler] speaks the same protocol as the camera:
//   - POST /capture : take a new frame
//   - GET /image : latest frame, 404 before the first capture
//   - GET /health : liveness
//
// Frames come from a [FrameSource]: [SyntheticFrames] renders side-by-side stereo JPEGs, [DirectoryFrames] cycles
// through the images in a folder.
//
// [Server] wraps [http.Server] with context-driven graceful shutdown.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
