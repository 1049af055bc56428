package consts

// Tables
const (
	DBProgram       = "program"
	DBRateLimitHits = "rate_limit_hits"
)

// Program
const (
	QProgID        = "id"
	QProgHost      = "host"
	QProgPID       = "pid"
	QProgListen    = "listen_addr"
	QProgStartedAt = "started_at"
	QProgHeartbeat = "last_heartbeat"
	QProgRunning   = "running"
)

// Rate limit hits
const (
	QHitID      = "id"
	QHitAddress = "address"
	QHitAt      = "hit_at"
)
