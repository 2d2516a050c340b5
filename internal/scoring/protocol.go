package scoring

import (
	"fmt"
	"math"
)

// RequestType identifies which scorer a request is addressed to.
type RequestType string

const (
	TypePressure   RequestType = "COMPUTE_PRESSURE"
	TypeVelocityCV RequestType = "COMPUTE_VELOCITY_CV"
	TypeAngular    RequestType = "COMPUTE_ANGULAR_ERROR"
	TypeLCS        RequestType = "COMPUTE_LCS_COMPLIANCE"
)

// AllRequestTypes returns every supported request type.
func AllRequestTypes() []RequestType {
	return []RequestType{TypePressure, TypeVelocityCV, TypeAngular, TypeLCS}
}

// Request is one scorer message. Only the fields relevant to Type are read.
type Request struct {
	Type            RequestType  `json:"type"`
	PressureSamples []float64    `json:"pressureSamples,omitempty"`
	Points          []TimedPoint `json:"points,omitempty"`
	StrokeAngles    []float64    `json:"strokeAngles,omitempty"`
	SymmetryAxes    int          `json:"symmetryAxes,omitempty"`
	RequiredOrder   []int        `json:"requiredOrder,omitempty"`
	UserOrder       []int        `json:"userOrder,omitempty"`
}

// Details carries scorer diagnostics. Values are numbers, except "error".
type Details map[string]any

// Response is the reply to one Request. Score is never NaN.
type Response struct {
	Score   float64 `json:"score"`
	Details Details `json:"details"`
}

// Err returns the error string carried in the details, if any.
func (r Response) Err() string {
	if r.Details == nil {
		return ""
	}
	if msg, ok := r.Details["error"].(string); ok {
		return msg
	}
	return ""
}

// ErrorResponse builds the zero-score reply for a rejected request.
func ErrorResponse(msg string) Response {
	return Response{Score: 0, Details: Details{"error": msg}}
}

// Handle dispatches a request to its scorer. It never panics on bad input
// and never returns a NaN score.
func Handle(req Request) Response {
	var resp Response
	switch req.Type {
	case TypePressure:
		resp = pressureResponse(req.PressureSamples)
	case TypeVelocityCV:
		resp = velocityResponse(req.Points)
	case TypeAngular:
		resp = angularResponse(req.StrokeAngles, req.SymmetryAxes)
	case TypeLCS:
		resp = sequenceResponse(req.RequiredOrder, req.UserOrder)
	case "":
		return ErrorResponse("missing message type")
	default:
		return ErrorResponse(fmt.Sprintf("unknown type: %s", req.Type))
	}

	if math.IsNaN(resp.Score) || math.IsInf(resp.Score, 0) {
		resp.Score = 0
	}
	return resp
}

func pressureResponse(samples []float64) Response {
	r := Pressure(samples)
	if r.N < 2 {
		return Response{Score: r.Score, Details: Details{"n": r.N}}
	}
	return Response{
		Score: detail(r.Score, 4),
		Details: Details{
			"n":      r.N,
			"mean":   detail(r.Mean, 4),
			"sigma":  detail(r.Sigma, 4),
			"target": TargetSigma,
		},
	}
}

func velocityResponse(points []TimedPoint) Response {
	r := Velocity(points)
	if r.Mean == 0 {
		return Response{Score: r.Score, Details: Details{"n": r.N, "mean": 0, "cv": 0}}
	}
	return Response{
		Score: detail(r.Score, 4),
		Details: Details{
			"n":          r.N,
			"mean":       detail(r.Mean, 4),
			"stdDev":     detail(r.StdDev, 4),
			"cv":         detail(r.CV, 4),
			"spikeCount": r.SpikeCount,
			"targetCV":   TargetVelocityCV,
		},
	}
}

func angularResponse(angles []float64, axes int) Response {
	r, err := Angular(angles, axes)
	if err != nil {
		return ErrorResponse(err.Error())
	}
	if r.StrokeCount == 0 {
		return Response{Score: r.Score, Details: Details{"strokeCount": 0}}
	}
	return Response{
		Score: detail(r.Score, 4),
		Details: Details{
			"strokeCount":    r.StrokeCount,
			"meanErrorDeg":   detail(r.MeanErrorDeg, 2),
			"maxErrorDeg":    detail(r.MaxErrorDeg, 2),
			"symmetryAxes":   r.SymmetryAxes,
			"targetErrorDeg": TargetAngularErrorDeg,
		},
	}
}

func sequenceResponse(required, user []int) Response {
	r := Sequence(required, user)
	return Response{
		Score: detail(r.Score, 4),
		Details: Details{
			"lcsLength":      r.LCSLength,
			"requiredLength": r.RequiredLength,
			"userLength":     r.UserLength,
			"backtracks":     r.Backtracks,
			"compliance":     detail(r.Compliance(), 1),
		},
	}
}
