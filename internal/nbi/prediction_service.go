// Package nbi exposes the prediction engine over gRPC.
//
// The service is described by hand rather than generated: requests and
// responses are google.protobuf.Struct values carrying the JSON form of a
// sweep.Plan and the exported result columns, so clients need no stubs
// beyond the well-known types.
package nbi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/signalsfoundry/hfprop/internal/logging"
	"github.com/signalsfoundry/hfprop/internal/sweep"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "hfprop.v1.PredictionService"

// Full method names.
const (
	PredictFullMethod = "/" + ServiceName + "/Predict"
	SweepFullMethod   = "/" + ServiceName + "/Sweep"
)

// DefaultMaxEvaluations bounds a single Sweep call.
const DefaultMaxEvaluations = 1 << 20

// PredictionServer is the server API for the prediction service.
type PredictionServer interface {
	// Predict evaluates a plan with exactly one month, hour, frequency and
	// receiver and returns its result row.
	Predict(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Sweep streams one result row per evaluation of the plan, in sweep
	// order.
	Sweep(*structpb.Struct, grpc.ServerStreamingServer[structpb.Struct]) error
}

// PredictionServiceDesc describes the service for grpc.Server.RegisterService.
var PredictionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PredictionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Predict", Handler: predictHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Sweep", Handler: sweepHandler, ServerStreams: true},
	},
	Metadata: "hfprop/v1/prediction.proto",
}

// RegisterPredictionServiceServer registers srv with s.
func RegisterPredictionServiceServer(s grpc.ServiceRegistrar, srv PredictionServer) {
	s.RegisterService(&PredictionServiceDesc, srv)
}

func predictHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PredictionServer).Predict(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PredictFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PredictionServer).Predict(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func sweepHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(PredictionServer).Sweep(in, &grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

// PredictionClient calls the prediction service.
type PredictionClient struct {
	cc grpc.ClientConnInterface
}

// NewPredictionClient returns a client over cc.
func NewPredictionClient(cc grpc.ClientConnInterface) *PredictionClient {
	return &PredictionClient{cc: cc}
}

// Predict evaluates a single-point plan.
func (c *PredictionClient) Predict(ctx context.Context, plan *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PredictFullMethod, plan, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Sweep starts a sweep and returns the stream of result rows.
func (c *PredictionClient) Sweep(ctx context.Context, plan *structpb.Struct, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &PredictionServiceDesc.Streams[0], SweepFullMethod, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(plan); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// PlanToStruct converts a plan to its request form.
func PlanToStruct(p sweep.Plan) (*structpb.Struct, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// PlanFromStruct decodes a request over the plan defaults.
func PlanFromStruct(s *structpb.Struct) (sweep.Plan, error) {
	if s == nil {
		return sweep.Plan{}, fmt.Errorf("%w: empty request", sweep.ErrInvalidPlan)
	}
	b, err := json.Marshal(s.AsMap())
	if err != nil {
		return sweep.Plan{}, fmt.Errorf("%w: %v", sweep.ErrInvalidPlan, err)
	}
	return sweep.ReadPlan(bytes.NewReader(b))
}

// RowCounter counts streamed result rows.
type RowCounter interface {
	IncStreamedRows(method string)
}

// PredictionService implements PredictionServer over a sweep.Runner.
type PredictionService struct {
	runner *sweep.Runner
	log    logging.Logger
	rows   RowCounter

	maxEvaluations int
}

var _ PredictionServer = (*PredictionService)(nil)

// ServiceOption configures a PredictionService.
type ServiceOption func(*PredictionService)

// WithRowCounter reports streamed rows to c.
func WithRowCounter(c RowCounter) ServiceOption {
	return func(s *PredictionService) { s.rows = c }
}

// WithMaxEvaluations rejects sweeps larger than n evaluations.
func WithMaxEvaluations(n int) ServiceOption {
	return func(s *PredictionService) {
		if n > 0 {
			s.maxEvaluations = n
		}
	}
}

// NewPredictionService returns a service backed by runner.
func NewPredictionService(runner *sweep.Runner, log logging.Logger, opts ...ServiceOption) *PredictionService {
	if log == nil {
		log = logging.Noop()
	}
	s := &PredictionService{
		runner:         runner,
		log:            log,
		maxEvaluations: DefaultMaxEvaluations,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PredictionService) logger(ctx context.Context) logging.Logger {
	if l := logging.LoggerFromContext(ctx); l != nil {
		return l
	}
	return s.log
}

func (s *PredictionService) plan(req *structpb.Struct) (sweep.Plan, error) {
	if s.runner == nil {
		return sweep.Plan{}, status.Error(codes.Unavailable, "prediction runner not configured")
	}
	plan, err := PlanFromStruct(req)
	if err != nil {
		return sweep.Plan{}, ToStatusError(err)
	}
	if err := plan.Validate(); err != nil {
		return sweep.Plan{}, ToStatusError(err)
	}
	return plan, nil
}

// Predict evaluates a single-point plan.
func (s *PredictionService) Predict(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	plan, err := s.plan(req)
	if err != nil {
		return nil, err
	}
	if n := plan.Evaluations(); n != 1 {
		return nil, status.Errorf(codes.InvalidArgument, "Predict takes a single evaluation, plan has %d; use Sweep", n)
	}

	ctx, span := StartChildSpan(ctx, "Predict/evaluate", "path", plan.PathName)
	defer span.End()

	var out *structpb.Struct
	err = s.runner.Run(ctx, plan, func(r sweep.Result) error {
		var err error
		out, err = structpb.NewStruct(sweep.Fields(r))
		return err
	})
	if err != nil {
		span.RecordError(err)
		s.logger(ctx).Warn(ctx, "Predict failed", logging.Error(err))
		return nil, ToStatusError(err)
	}
	return out, nil
}

// Sweep streams every evaluation of the plan.
func (s *PredictionService) Sweep(req *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()
	plan, err := s.plan(req)
	if err != nil {
		return err
	}
	n := plan.Evaluations()
	if n > s.maxEvaluations {
		return status.Errorf(codes.ResourceExhausted, "plan has %d evaluations, limit is %d", n, s.maxEvaluations)
	}

	ctx, span := StartChildSpan(ctx, "Sweep/run", "path", plan.PathName, attribute.Int("evaluations", n))
	defer span.End()

	err = s.runner.Run(ctx, plan, func(r sweep.Result) error {
		fields := sweep.Fields(r)
		fields["seq"] = float64(r.Seq)
		row, err := structpb.NewStruct(fields)
		if err != nil {
			return err
		}
		if err := stream.Send(row); err != nil {
			return err
		}
		if s.rows != nil {
			s.rows.IncStreamedRows("Sweep")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		s.logger(ctx).Warn(ctx, "Sweep failed", logging.Int("evaluations", n), logging.Error(err))
		return ToStatusError(err)
	}
	return nil
}
