package corelog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ProductionLogger writes human-readable text in local development and
// structured JSON when a Kubernetes environment is detected, matching the
// dual-format behavior teams expect from container log aggregation.
type ProductionLogger struct {
	level       string
	debug       bool
	serviceName string
	component   string
	format      string
	output      io.Writer
}

// NewProductionLogger builds a logger for serviceName. format is "json" or
// "text"; an empty format auto-detects JSON inside Kubernetes
// (KUBERNETES_SERVICE_HOST set) and text otherwise.
func NewProductionLogger(serviceName, level, format string, debug bool) *ProductionLogger {
	if format == "" {
		format = "text"
		if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
			format = "json"
		}
	}
	if level == "" {
		level = "info"
	}
	return &ProductionLogger{
		level:       strings.ToLower(level),
		debug:       debug || strings.ToLower(level) == "debug",
		serviceName: serviceName,
		format:      format,
		output:      os.Stdout,
	}
}

// WithComponent returns a logger that tags every entry with component.
func (p *ProductionLogger) WithComponent(component string) Logger {
	clone := *p
	clone.component = component
	return &clone
}

func (p *ProductionLogger) Info(msg string, fields map[string]interface{}) {
	p.logEvent(nil, "INFO", msg, fields)
}
func (p *ProductionLogger) Warn(msg string, fields map[string]interface{}) {
	p.logEvent(nil, "WARN", msg, fields)
}
func (p *ProductionLogger) Error(msg string, fields map[string]interface{}) {
	p.logEvent(nil, "ERROR", msg, fields)
}
func (p *ProductionLogger) Debug(msg string, fields map[string]interface{}) {
	if p.debug {
		p.logEvent(nil, "DEBUG", msg, fields)
	}
}

func (p *ProductionLogger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	p.logEvent(ctx, "INFO", msg, fields)
}
func (p *ProductionLogger) WarnWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	p.logEvent(ctx, "WARN", msg, fields)
}
func (p *ProductionLogger) ErrorWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	p.logEvent(ctx, "ERROR", msg, fields)
}
func (p *ProductionLogger) DebugWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	if p.debug {
		p.logEvent(ctx, "DEBUG", msg, fields)
	}
}

func (p *ProductionLogger) logEvent(ctx context.Context, level, msg string, fields map[string]interface{}) {
	timestamp := time.Now().Format(time.RFC3339)

	if p.format == "json" {
		entry := map[string]interface{}{
			"timestamp": timestamp,
			"level":     level,
			"service":   p.serviceName,
			"message":   msg,
		}
		if p.component != "" {
			entry["component"] = p.component
		}
		if reqID := requestIDFromContext(ctx); reqID != "" {
			entry["request_id"] = reqID
		}
		for k, v := range fields {
			entry[k] = v
		}
		if data, err := json.Marshal(entry); err == nil {
			fmt.Fprintln(p.output, string(data))
		}
		return
	}

	component := p.component
	if component == "" {
		component = p.serviceName
	}
	var fieldStr strings.Builder
	for k, v := range fields {
		fmt.Fprintf(&fieldStr, " %s=%v", k, v)
	}
	reqInfo := ""
	if reqID := requestIDFromContext(ctx); reqID != "" {
		reqInfo = fmt.Sprintf("[req=%s] ", reqID)
	}
	fmt.Fprintf(p.output, "%s [%s] [%s] %s%s%s\n", timestamp, level, component, reqInfo, msg, fieldStr.String())
}

type requestIDKey struct{}

// WithRequestID attaches a request/task correlation id to ctx for log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}
