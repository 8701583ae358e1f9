package observability

import (
	"context"
	"time"

	"github.com/annel0/battleship3d/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Options описывает параметры трассировки
type Options struct {
	Enabled     bool
	ServiceName string
	Endpoint    string // host:port OTLP HTTP; пусто: переменные OTEL_* или localhost:4318
}

// InitTelemetry настраивает OTLP экспортер и устанавливает глобальный TracerProvider.
// Возвращает функцию shutdown, которую нужно вызвать при завершении приложения.
// При Enabled == false глобальный провайдер не меняется (noop).
func InitTelemetry(ctx context.Context, opts Options) (func(context.Context) error, error) {
	if !opts.Enabled {
		logging.Debug("📡 OpenTelemetry отключён")
		return func(context.Context) error { return nil }, nil
	}

	var expOpts []otlptracehttp.Option
	if opts.Endpoint != "" {
		expOpts = append(expOpts, otlptracehttp.WithEndpoint(opts.Endpoint), otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(ctx, expOpts...)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(opts.ServiceName)),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	logging.Info("📡 OpenTelemetry инициализирован (service=%s)", opts.ServiceName)

	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}
	return shutdown, nil
}

// Tracer возвращает tracer глобального провайдера
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
