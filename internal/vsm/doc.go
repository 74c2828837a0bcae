// Package vsm provides an HTTP client for the Vector Space Model search API.
//
// # Overview
//
// The backend exposes three endpoints. All parameters travel in the query
// string and every request body is empty:
//
//	GET  /                      handshake, {"message": "Welcome to the Vector Space Model..."}
//	POST /build?corpus_dir=...  {"message": "Index built for corpus directory: ..."} or {"error": ...}
//	GET  /search?query=...      {"query": ..., "results": [[name, score], ...], "elapsed_time": ...} or {"error": ...}
//
// # Architecture
//
//   - client.go: Client, request construction, status and decode handling
//   - types.go: Document (wire object), Outcome (typed status), Backend
//   - errors.go: Error and the ErrorKind taxonomy
//
// # Dispatch
//
// The server signals success with message prefixes rather than a status
// field. Classify turns a Document into an Outcome so callers switch on a
// kind instead of matching strings. The prefixes are exported and must not
// change while the server keeps its current wording.
//
// # Errors
//
// Send returns *Error for anything the user should see:
//
//   - NetworkFailure: no response (dial, TLS, context cancelled)
//   - BackendError: non-2xx status
//   - UnrecognizedResponse: body that is not a JSON object
//
// MalformedPayload is defined here for the results renderer, which drops
// and logs bad rows instead of failing the response.
//
// # Usage Example
//
//	client, err := vsm.NewClient(vsm.DefaultLocalURL)
//	if err != nil {
//		return err
//	}
//	doc, err := client.BuildIndex(ctx, "/srv/corpus")
//	if err != nil {
//		return err
//	}
//	switch vsm.Classify(doc).Kind {
//	case vsm.OutcomeIndexBuilt:
//		// ready for queries
//	}
package vsm
