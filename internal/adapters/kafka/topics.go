package kafka

// Topic definitions for Kafka event streaming
const (
	// Analytics results
	TopicOptionsFlowReports = "options.flow.reports"
	TopicFiveFactors        = "options.five_factors"

	// Inbound analysis requests carrying pre-fetched alerts
	TopicOptionsFlowRequests = "options.flow.requests"
)
