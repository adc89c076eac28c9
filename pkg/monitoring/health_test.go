package monitoring

import (
	"testing"
)

func TestCheckHealthAggregation(t *testing.T) {
	hc := NewHealthChecker("warpprofile", "test")

	hc.AddCheck("always-healthy", func() CheckResult {
		return CheckResult{Status: StatusHealthy}
	})

	status := hc.CheckHealth()
	if status.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %s", status.Status)
	}

	hc.AddCheck("degraded-provider", func() CheckResult {
		return CheckResult{Status: StatusDegraded, Message: "quotient unreachable"}
	})
	status = hc.CheckHealth()
	if status.Status != StatusDegraded {
		t.Fatalf("expected degraded, got %s", status.Status)
	}

	hc.AddCheck("broken-config", func() CheckResult {
		return CheckResult{Status: StatusUnhealthy}
	})
	status = hc.CheckHealth()
	if status.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy, got %s", status.Status)
	}
	if len(status.Checks) != 3 {
		t.Fatalf("expected 3 check results, got %d", len(status.Checks))
	}
}

func TestRedisHealthCheck_NilClientDegrades(t *testing.T) {
	check := RedisHealthCheck(nil)
	result := check()
	if result.Status != StatusDegraded {
		t.Fatalf("expected degraded without redis, got %s", result.Status)
	}
}

func TestConfigurationHealthCheck(t *testing.T) {
	check := ConfigurationHealthCheck(map[string]string{
		"NEYNAR_API_KEY": "set",
		"PORT":           "8080",
	})
	if result := check(); result.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %s: %s", result.Status, result.Message)
	}

	check = ConfigurationHealthCheck(map[string]string{
		"NEYNAR_API_KEY": "",
	})
	if result := check(); result.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy on missing config, got %s", result.Status)
	}
}
