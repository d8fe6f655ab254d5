package witness

import (
	"fmt"

	"github.com/basislabs/basis-edge-go/types"
)

// Payload is a canonical signing payload. Implementations form a closed
// set, one per operation kind, so every variant goes through the same
// signing path. Render must be deterministic for identical field values;
// the timestamp fields are the only deliberately varying inputs.
type Payload interface {
	Operation() types.Operation
	Render() string
}

// ContentWitness is the payload for witnessed page content.
type ContentWitness struct {
	URL       string
	Timestamp string
	Content   string
}

func (p ContentWitness) Operation() types.Operation { return types.OperationContentWitness }

func (p ContentWitness) Render() string {
	return fmt.Sprintf("%s:%s:%s", p.URL, p.Timestamp, p.Content)
}

// Classification is the payload for an image classification result.
type Classification struct {
	ImageHash  string
	TopResult  string
	Confidence string
}

func (p Classification) Operation() types.Operation { return types.OperationClassification }

func (p Classification) Render() string {
	return fmt.Sprintf("IMAGE_HASH:%s:TOP_RESULT:%s:CONFIDENCE:%s", p.ImageHash, p.TopResult, p.Confidence)
}

// CacheWrite is the payload for a witnessed cache write.
type CacheWrite struct {
	Timestamp string
	Key       string
	Value     string
}

func (p CacheWrite) Operation() types.Operation { return types.OperationCacheWrite }

func (p CacheWrite) Render() string {
	return fmt.Sprintf("I hold this data as of %s. Key: %s, Value: %s", p.Timestamp, p.Key, p.Value)
}

// CacheRead is the payload for a witnessed cache read.
type CacheRead struct {
	Key       string
	Value     string
	Timestamp string
}

func (p CacheRead) Operation() types.Operation { return types.OperationCacheRead }

func (p CacheRead) Render() string {
	return fmt.Sprintf("%s:%s:%s", p.Key, p.Value, p.Timestamp)
}

// Calculation is the payload for a formula evaluation result.
type Calculation struct {
	Formula    string
	JSONInputs string
	Result     string
}

func (p Calculation) Operation() types.Operation { return types.OperationCalculation }

func (p Calculation) Render() string {
	return fmt.Sprintf("FORMULA:%s:INPUTS:%s:RESULT:%s", p.Formula, p.JSONInputs, p.Result)
}

// Timestamping is the payload for timestamped event data.
type Timestamping struct {
	EventHash string
	Timestamp string
	Nonce     string
}

func (p Timestamping) Operation() types.Operation { return types.OperationTimestamping }

func (p Timestamping) Render() string {
	return fmt.Sprintf("EVENT:%s:TIME:%s:NONCE:%s", p.EventHash, p.Timestamp, p.Nonce)
}

// BadgeIssuance is the payload for an issued status badge.
type BadgeIssuance struct {
	Wallet    string
	Status    string
	SessionID string
}

func (p BadgeIssuance) Operation() types.Operation { return types.OperationBadgeIssuance }

func (p BadgeIssuance) Render() string {
	return fmt.Sprintf("WALLET:%s:STATUS:%s:SESSION:%s", p.Wallet, p.Status, p.SessionID)
}

// RiskAssessment is the payload for a risk assessment result.
type RiskAssessment struct {
	Target    string
	Score     string
	Timestamp string
}

func (p RiskAssessment) Operation() types.Operation { return types.OperationRiskAssessment }

func (p RiskAssessment) Render() string {
	return fmt.Sprintf("TARGET:%s:SCORE:%s:TIME:%s", p.Target, p.Score, p.Timestamp)
}
