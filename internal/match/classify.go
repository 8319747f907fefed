package match

// Bucket groups statuses for listing.
type Bucket string

const (
	BucketLive      Bucket = "live"
	BucketScheduled Bucket = "scheduled"
	BucketFinished  Bucket = "finished"
)

// ParseBucket accepts the bucket names used by the operator surface.
func ParseBucket(s string) (Bucket, bool) {
	switch Bucket(s) {
	case BucketLive, BucketScheduled, BucketFinished:
		return Bucket(s), true
	}
	return "", false
}

// BucketOf maps a status to its bucket. Unknown statuses belong to no bucket.
func BucketOf(s Status) (Bucket, bool) {
	switch s {
	case StatusRunning:
		return BucketLive, true
	case StatusNotStarted, StatusUpcoming:
		return BucketScheduled, true
	case StatusFinished:
		return BucketFinished, true
	}
	return "", false
}

// Classify returns the matches that belong to bucket, preserving input order.
// The input slice is never modified.
func Classify(matches []Match, bucket Bucket) []Match {
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if b, ok := BucketOf(m.Status); ok && b == bucket {
			out = append(out, m)
		}
	}
	return out
}
