// Package homeclip provides an HTTP client for the homeclip remote store.
//
// # Overview
//
// The remote store keeps one text document and a list of file attachments.
// This package is a stateless request wrapper around its REST endpoints: it
// handles JSON and multipart encoding and maps every failure onto one of three
// typed errors.
//
// # Endpoints
//
//   - GET    /api/content        document, attachments, expiration
//   - POST   /api/content        replace the document ({"content": ...})
//   - GET    /api/files          attachment list in server order
//   - POST   /api/files/upload   multipart upload, field "file"
//   - GET    /api/files/{id}     attachment bytes
//   - DELETE /api/files/{id}     remove an attachment
//
// # Error Handling
//
//   - NetworkError: the request failed before a response (errors.Is ErrNetwork)
//   - HTTPError: non-2xx response, with the server's "error" text when present
//     (errors.Is ErrHTTP)
//   - ApplicationError: 2xx response whose payload reports success=false
//     (errors.Is ErrApplication)
//
// Describe turns any of them into the short reason shown on the status line.
// Nothing is retried here; callers decide how to surface failures.
//
// # Request Handling
//
// All requests carry the caller's context, an Accept: application/json
// header, a homeclip-term User-Agent and a fresh X-Request-ID so individual
// saves can be traced in server logs.
//
// The server encodes "never expires" as the zero timestamp. The client
// normalizes that to a nil ExpiresAt so callers only deal with one form.
package homeclip
