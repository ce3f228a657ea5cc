package common

// AuthHeaderName is the HTTP header carrying the session token on outbound
// requests to the back office API.
const AuthHeaderName = "Authorization"

// DeviceHeaderName identifies the device on outbound requests; used by the
// server to audit field submissions.
const DeviceHeaderName = "X-Device-Id"
