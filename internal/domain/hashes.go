package domain

// ConfigHash, FullHash, DatasetHash, and RunId are BLAKE3-derived hex
// strings (see internal/fingerprint for derivation, and
// internal/barstore for DatasetHash). They are plain
// string newtypes here so every package that threads an identity
// around does not need to import the hashing package itself.
type (
	ConfigHash  string
	FullHash    string
	DatasetHash string
	RunID       string
)
