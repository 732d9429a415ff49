package payment

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/models"
	"github.com/google/uuid"
)

// GatewayResult is the classified outcome of a charge attempt.
type GatewayResult struct {
	Approved      bool
	Response      map[string]any
	FailureReason string
}

// Gateway is the payment-gateway contract. The saga only ever sees the
// classified result; gateway internals stay behind this interface.
type Gateway interface {
	Charge(ctx context.Context, method models.PaymentMethod, amount float64, details map[string]any) (*GatewayResult, error)
}

// SimulatedGateway approves or declines charges with per-method success
// rates, mimicking a real gateway's behavior including risk-based declines
// for large amounts.
type SimulatedGateway struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedGateway(seed int64) *SimulatedGateway {
	return &SimulatedGateway{rng: rand.New(rand.NewSource(seed))}
}

var successRates = map[models.PaymentMethod]float64{
	models.MethodCreditCard:    0.95,
	models.MethodDebitCard:     0.90,
	models.MethodDigitalWallet: 0.98,
	models.MethodNetBanking:    0.85,
}

func (g *SimulatedGateway) Charge(_ context.Context, method models.PaymentMethod, amount float64, _ map[string]any) (*GatewayResult, error) {
	g.mu.Lock()
	roll := g.rng.Float64()
	latency := 200 + g.rng.Intn(1800)
	g.mu.Unlock()

	rate, ok := successRates[method]
	if !ok {
		rate = 0.90
	}
	// Large amounts decline more often, as a real risk engine would.
	if amount > 5000 {
		rate *= 0.8
	}

	gatewayTxID := fmt.Sprintf("gtw_%s", uuid.NewString()[:12])
	if roll < rate {
		return &GatewayResult{
			Approved: true,
			Response: map[string]any{
				"gateway_transaction_id": gatewayTxID,
				"authorization_code":     fmt.Sprintf("auth_%s", uuid.NewString()[:8]),
				"gateway_status":         "APPROVED",
				"processing_time_ms":     latency,
			},
		}, nil
	}

	return &GatewayResult{
		Approved: false,
		Response: map[string]any{
			"gateway_transaction_id": gatewayTxID,
			"error_code":             "DECLINED",
			"gateway_status":         "DECLINED",
			"processing_time_ms":     latency,
		},
		FailureReason: "Insufficient funds or card declined",
	}, nil
}
