package mqtt

import (
	"strings"
	"testing"
)

func TestTopics_Builders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"service request", topics.ServiceRequest("grid_stat", "purge_device_data"), "gridstat/service/grid_stat/purge_device_data"},
		{"service result", topics.ServiceResult("recorder", "purge_entities"), "gridstat/result/recorder/purge_entities"},
		{"system status", topics.SystemStatus(), "gridstat/system/status"},
		{"all service requests", topics.AllServiceRequests(), "gridstat/service/+/+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestTopics_ParseServiceRequest(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		topic   string
		domain  string
		service string
		ok      bool
	}{
		{"gridstat/service/grid_stat/purge_all_data", "grid_stat", "purge_all_data", true},
		{"gridstat/service/recorder/purge_entities", "recorder", "purge_entities", true},
		{"gridstat/result/grid_stat/purge_all_data", "", "", false},
		{"gridstat/service/grid_stat", "", "", false},
		{"gridstat/service/grid_stat/purge/extra", "", "", false},
		{"gridstat/service//purge_all_data", "", "", false},
		{"unrelated/topic", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			domain, service, ok := topics.ParseServiceRequest(tt.topic)
			if ok != tt.ok || domain != tt.domain || service != tt.service {
				t.Errorf("ParseServiceRequest(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.topic, domain, service, ok, tt.domain, tt.service, tt.ok)
			}
		})
	}
}

func TestStatusPayloads(t *testing.T) {
	online := buildOnlinePayload("gridstat-core")
	if !strings.Contains(online, `"status":"online"`) || !strings.Contains(online, "gridstat-core") {
		t.Errorf("online payload = %s", online)
	}

	offline := buildOfflinePayload("gridstat-core")
	if !strings.Contains(offline, `"status":"offline"`) || !strings.Contains(offline, "graceful_shutdown") {
		t.Errorf("offline payload = %s", offline)
	}
}
