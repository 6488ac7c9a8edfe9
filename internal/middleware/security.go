// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

// SecureHeaders adds security-related HTTP headers to every response.
// The server is a JSON API that also serves uploaded files from the local
// backend, so the headers are tuned for that: nothing here is meant to be
// framed, and stored uploads must never be interpreted as a different type
// than they were served with.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		// Prevent the browser from MIME-sniffing the Content-Type.
		// Matters most for the /files tree, where the bytes are
		// caller-supplied.
		h.Set("X-Content-Type-Options", "nosniff")

		// No page of this server belongs in a frame.
		h.Set("X-Frame-Options", "DENY")

		// Disable the legacy XSS filter (can cause issues; CSP is preferred).
		h.Set("X-XSS-Protection", "0")

		// Control what information is sent in the Referer header.
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}
