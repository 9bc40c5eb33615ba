package opentelemetry

import (
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// NewZipkinProvider 把 span 上报到 zipkin，例如 http://localhost:9411/api/v2/spans
func NewZipkinProvider(serviceName, url string) (*sdktrace.TracerProvider, error) {
	exporter, err := zipkin.New(url)
	if err != nil {
		return nil, err
	}
	return newProvider(serviceName, exporter), nil
}

// NewJaegerProvider 例如 http://localhost:14268/api/traces
func NewJaegerProvider(serviceName, endpoint string) (*sdktrace.TracerProvider, error) {
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
	if err != nil {
		return nil, err
	}
	return newProvider(serviceName, exporter), nil
}

func newProvider(serviceName string, exporter sdktrace.SpanExporter) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)
}
