package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/fixacareer/fixauth"
)

type metricsSource interface {
	MetricsSnapshot() fixauth.MetricsSnapshot
	AuditDropped() uint64
}

type counterDef struct {
	id   fixauth.MetricID
	name string
	help string
}

var counterDefs = []counterDef{
	{fixauth.MetricLoginSuccess, "fixauth_login_success_total", "Successful password checks."},
	{fixauth.MetricLoginFailure, "fixauth_login_failure_total", "Rejected login attempts."},
	{fixauth.MetricSecondFactorSuccess, "fixauth_second_factor_success_total", "Verified one-time codes."},
	{fixauth.MetricSecondFactorFailure, "fixauth_second_factor_failure_total", "Rejected one-time codes."},
	{fixauth.MetricSecondFactorRateLimited, "fixauth_second_factor_rate_limited_total", "Second-factor attempts shed by the limiter."},
	{fixauth.MetricRefreshSuccess, "fixauth_refresh_success_total", "Successful token rotations."},
	{fixauth.MetricRefreshFailure, "fixauth_refresh_failure_total", "Rejected refresh tokens."},
	{fixauth.MetricPasswordChangeSuccess, "fixauth_password_change_success_total", "Completed password changes."},
	{fixauth.MetricPasswordChangeFailure, "fixauth_password_change_failure_total", "Rejected password changes."},
	{fixauth.MetricPasswordReset, "fixauth_password_reset_total", "Completed forgot-password resets."},
	{fixauth.MetricAdminCreated, "fixauth_admin_created_total", "Provisioned administrator accounts."},
	{fixauth.MetricUserRegistered, "fixauth_user_registered_total", "Self-registered user accounts."},
	{fixauth.MetricEmailDispatchFailure, "fixauth_email_dispatch_failure_total", "Swallowed OTP email send failures."},
}

// Exporter renders engine metrics in Prometheus text exposition format.
type Exporter struct {
	source metricsSource
}

// NewExporter creates an exporter that reads from the given [fixauth.Engine].
func NewExporter(engine *fixauth.Engine) *Exporter {
	return &Exporter{source: engine}
}

// NewExporterFromSource creates an exporter from a custom snapshot source.
func NewExporterFromSource(source metricsSource) *Exporter {
	return &Exporter{source: source}
}

// Handler returns an http.Handler that serves the current metrics.
func (p *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render writes the current metrics in Prometheus text exposition format.
func (p *Exporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()
	dropped := p.source.AuditDropped()
	if len(snapshot.Counters) == 0 && dropped == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(4096)

	for _, def := range counterDefs {
		writeCounter(&b, def.name, def.help, snapshot.Counters[def.id])
	}
	writeCounter(&b, "fixauth_audit_dropped_total", "Dropped audit events due to dispatcher backpressure.", dropped)

	return b.String()
}

func writeCounter(b *strings.Builder, name, help string, value uint64) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteString(" counter\n")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	help = strings.ReplaceAll(help, "\n", "\\n")
	return help
}
