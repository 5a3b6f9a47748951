package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/grazioso/shelter/internal/models"
	"github.com/grazioso/shelter/internal/services"
)

// validatePort validates a TCP port, defaulting to the MongoDB port
func validatePort(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "27017", nil
	}

	num, err := strconv.Atoi(input)
	if err != nil {
		return "", fmt.Errorf("invalid port: %s (enter a number)", input)
	}
	if num < 1 || num > 65535 {
		return "", fmt.Errorf("port must be between 1 and 65535, got: %d", num)
	}
	return input, nil
}

// validateSeverity accepts a severity in any letter case and returns
// its canonical spelling
func validateSeverity(input string) (models.Severity, error) {
	input = strings.TrimSpace(input)
	for _, s := range models.Severities {
		if strings.EqualFold(string(s), input) {
			return s, nil
		}
	}
	return "", fmt.Errorf("invalid severity: %q (must be Low, Medium, High or Critical)", input)
}

// validateCronExpression validates a standard five field cron expression
// or a descriptor such as @daily
func validateCronExpression(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("cron expression is required")
	}
	if _, err := cron.ParseStandard(input); err != nil {
		return "", fmt.Errorf("invalid cron expression: %s (%v)", input, err)
	}
	return input, nil
}

// validateReport checks a report name against the known reports
func validateReport(input string) (string, error) {
	input = strings.TrimSpace(input)
	if !services.ValidReport(input) {
		return "", fmt.Errorf("unknown report: %s (choose one of %s)", input, strings.Join(services.ReportNames(), ", "))
	}
	return input, nil
}

// maskSensitiveData masks sensitive data for display
func maskSensitiveData(data string, maskChar string) string {
	if data == "" {
		return "(not set)"
	}
	if len(data) <= 8 {
		return strings.Repeat(maskChar, 3)
	}
	return data[:2] + strings.Repeat(maskChar, 3) + data[len(data)-2:]
}
