// Package upload is the temp-file intake layer behind the file picker.
//
// The browser posts a chosen file to the intake handler before any
// widget logic runs; the handler stores it and answers with a temp ID.
// From then on the file is addressed only by that ID: the preview
// endpoint streams it back for an <img>, and send paths open it again
// to forward the bytes elsewhere. Opening is non-consuming, so one
// stored file serves the preview and any number of send attempts.
//
// Stored files are reclaimed only by age, through Cleanup; replacing a
// selection never deletes the previous file, which keeps issued
// preview URLs valid until expiry.
//
// Two stores are provided: DiskStore for single-node setups and
// S3Store for shared or ephemeral-disk deployments.
package upload
