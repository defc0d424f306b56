// Package services implements the collaborators that sit outside the local gallery.
//
// # Capture Device
//
// [DeviceService] speaks the camera's two-call HTTP protocol:
//   - POST /capture triggers a photo; only 200 is success
//   - GET /image returns the resulting image bytes
//
// Every failure is a [shared.NetworkError]. Transport covers connection errors, timeouts and non-200 statuses;
// Decode covers bodies that are not an image or exceed the size cap. The client never retries. Timeouts come
// from the injected [http.Client].
//
// # Libraries
//
// A [Library] receives exported copies of gallery images:
//   - [DirectoryLibrary] links files into a folder, suffixing names that collide
//   - [S3Library] uploads to an S3-compatible bucket with path-style addressing
//
// # Sharing and Import
//
// [ArchiveShare] bundles a selection into one zip archive. [DirectorySource] reads every decodable image from a
// folder for bulk import.
//
// # Image Checks
//
// [DetectImage] validates bytes against the registered decoders (JPEG, PNG, GIF, WebP, BMP, TIFF) by decoding
// only the header.
package services
