package kvdb

// DB is a small persistent key-value store. It keeps records of finished
// import jobs so the audit trail survives process restarts, unlike the
// in-memory job registry.
type DB interface {
	Set(key string, value string) error
	Get(key string) (string, error)
	List() (map[string]string, error)
	Close() error
}
