// Package http exposes the table session over a small JSON API.
//
// Handlers stay thin: they decode and validate the request, call the
// session, and render either the result or an APIError built from the
// session's AppError. Routes:
//
//	POST   /api/table          load an uploaded file (multipart "file") or a gsheet: source (JSON)
//	GET    /api/table          current view; ?sort=COL&order=asc|desc|none re-sorts it
//	GET    /api/table/search   ?q=TERM narrows the rows, empty q shows all again
//	GET    /api/table/export   ?format=csv|xlsx downloads the visible rows
//	POST   /api/table/email    mails the visible rows
//	DELETE /api/table          drops the table
//	GET    /api/health         liveness plus whether a table is loaded
//
// Successful responses are wrapped as {"status":"success","data":...};
// failures as {"success":false,"error":{...}}.
package http
