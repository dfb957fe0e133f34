package auction

const TopicSubmissionOutcomes = "auction.submission.outcomes"

// Partition key = auction id, so every event of one auction stays ordered.
func PartitionKey(auctionID string) []byte { return []byte(auctionID) }
