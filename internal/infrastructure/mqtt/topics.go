package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the gridstat MQTT hierarchy.
const (
	// TopicPrefix is the base for all gridstat topics.
	TopicPrefix = "gridstat"

	// TopicPrefixService is the base for service invocation requests.
	TopicPrefixService = "gridstat/service"

	// TopicPrefixResult is the base for service invocation results.
	TopicPrefixResult = "gridstat/result"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "gridstat/system"
)

// Topics provides builders for gridstat MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	reqTopic := topics.ServiceRequest("grid_stat", "purge_device_data")
//	// Returns: "gridstat/service/grid_stat/purge_device_data"
type Topics struct{}

// ServiceRequest returns the topic a service is invoked on.
//
// Example: gridstat/service/grid_stat/purge_device_data
func (Topics) ServiceRequest(domain, service string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixService, domain, service)
}

// ServiceResult returns the topic a service invocation result is
// published on.
//
// Example: gridstat/result/grid_stat/purge_device_data
func (Topics) ServiceResult(domain, service string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixResult, domain, service)
}

// SystemStatus returns the system status topic.
//
// Example: gridstat/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllServiceRequests returns a pattern matching every service request.
//
// Pattern: gridstat/service/+/+
func (Topics) AllServiceRequests() string {
	return fmt.Sprintf("%s/+/+", TopicPrefixService)
}

// ParseServiceRequest extracts the (domain, service) pair from a
// service request topic. Returns ok=false for topics outside the
// service hierarchy.
func (Topics) ParseServiceRequest(topic string) (domain, service string, ok bool) {
	rest, found := strings.CutPrefix(topic, TopicPrefixService+"/")
	if !found {
		return "", "", false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
