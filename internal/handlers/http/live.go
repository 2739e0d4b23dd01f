package http

import _ "embed"

//go:embed web/live_stream.html
var livePageHTML []byte
