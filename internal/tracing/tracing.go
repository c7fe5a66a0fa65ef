package tracing

import (
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jaegerzap "github.com/uber/jaeger-client-go/log/zap"
	"max.ks1230/expense-tracker/internal/logger"
)

type config interface {
	AgentAddr() string
	ServiceName() string
}

// Init installs the global tracer. Without an agent address tracing is a no-op.
func Init(cfg config) (io.Closer, error) {
	c := jaegercfg.Configuration{
		ServiceName: cfg.ServiceName(),
		Disabled:    cfg.AgentAddr() == "",
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LocalAgentHostPort: cfg.AgentAddr(),
		},
	}

	tracer, closer, err := c.NewTracer(jaegercfg.Logger(jaegerzap.NewLogger(logger.Logger())))
	if err != nil {
		return nil, errors.Wrap(err, "init tracer")
	}
	opentracing.SetGlobalTracer(tracer)
	return closer, nil
}
