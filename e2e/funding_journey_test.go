// Package e2e exercises the full sponsorship journey over the HTTP surface:
// login, slot creation, payment, webhook reconciliation, and reporting.
package e2e

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harambee/internal/events"
	"harambee/internal/jwttoken"
	"harambee/internal/ledger"
	ledgerhandler "harambee/internal/ledger/handler"
	ledgersvc "harambee/internal/ledger/service"
	"harambee/internal/message"
	messagehandler "harambee/internal/message/handler"
	messagesvc "harambee/internal/message/service"
	"harambee/internal/otp"
	otphandler "harambee/internal/otp/handler"
	otpsvc "harambee/internal/otp/service"
	"harambee/internal/payment/gateway"
	paymenthandler "harambee/internal/payment/handler"
	paymentsvc "harambee/internal/payment/service"
	"harambee/internal/progress"
	progresshandler "harambee/internal/progress/handler"
	progresssvc "harambee/internal/progress/service"
	"harambee/internal/slot"
	slothandler "harambee/internal/slot/handler"
	slotsvc "harambee/internal/slot/service"
	statshandler "harambee/internal/stats/handler"
	statssvc "harambee/internal/stats/service"
	"harambee/pkg/platform/audit"
	"harambee/pkg/testutil"
)

const webhookSecret = "whsec_journey_test"

// codeSender captures dispatched OTP codes so the test can log in.
type codeSender struct {
	mu    sync.Mutex
	codes map[string]string
	done  chan struct{}
}

func newCodeSender() *codeSender {
	return &codeSender{codes: make(map[string]string), done: make(chan struct{}, 16)}
}

func (c *codeSender) Send(_ context.Context, recipient, code string) error {
	c.mu.Lock()
	c.codes[recipient] = code
	c.mu.Unlock()
	c.done <- struct{}{}
	return nil
}

func (c *codeSender) wait(t *testing.T, recipient string) string {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		c.mu.Lock()
		code, ok := c.codes[recipient]
		c.mu.Unlock()
		if ok {
			return code
		}
		select {
		case <-c.done:
		case <-deadline:
			t.Fatalf("no code dispatched to %s", recipient)
		}
	}
}

type fixture struct {
	router     http.Handler
	sender     *codeSender
	recorder   *events.Recorder
	auditStore *audit.InMemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := jwttoken.NewService("journey-signing-key", "harambee", "harambee")

	slots := slot.NewMemory(2000)
	ledgerStore := ledger.NewMemory(slots)
	messages := message.NewMemory()
	updates := progress.NewMemory()

	auditStore := audit.NewInMemoryStore()
	trail := audit.NewTrail(auditStore, logger)
	t.Cleanup(trail.Close)

	recorder := events.NewRecorder()
	publisher := events.WithAudit(recorder, trail)

	// Gateway stub issuing sequential intent IDs.
	var gwMu sync.Mutex
	intentSeq := 0
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/payment_intents" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		gwMu.Lock()
		intentSeq++
		seq := intentSeq
		gwMu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"pi_%06d","client_secret":"cs_test_%06d","status":"requires_payment_method"}`, seq, seq)
	}))
	t.Cleanup(gw.Close)

	sender := newCodeSender()

	slotService := slotsvc.New(slots, logger, nil)
	ledgerService := ledgersvc.New(ledgerStore, logger)
	paymentService := paymentsvc.New(slots, ledgerService,
		gateway.NewHTTPClient(gw.URL, "sk_test_journey", 5*time.Second, logger),
		publisher, logger, nil)
	otpService := otpsvc.New(otp.NewMemory(), sender, logger, nil)
	statsService := statssvc.New(slots, ledgerStore, logger)
	messageService := messagesvc.New(messages, slots, logger)
	progressService := progresssvc.New(updates, slotService, logger)

	router := chi.NewRouter()
	otphandler.New(otpService, tokens, logger).Register(router)
	slothandler.New(slotService, ledgerService, logger, tokens).Register(router)
	ledgerhandler.New(ledgerService, logger, tokens).Register(router)
	paymenthandler.New(paymentService, logger, tokens, webhookSecret).Register(router)
	statshandler.New(statsService, logger).Register(router)
	messagehandler.New(messageService, logger, tokens).Register(router)
	progresshandler.New(progressService, logger, tokens).Register(router)

	return &fixture{
		router:     router,
		sender:     sender,
		recorder:   recorder,
		auditStore: auditStore,
	}
}

// login walks the OTP flow and returns a bearer token.
func (f *fixture) login(t *testing.T, identifier string) string {
	t.Helper()

	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost,
		"/auth/otp/send", map[string]string{"identifier": identifier}))
	testutil.AssertStatus(t, rr, http.StatusAccepted)

	code := f.sender.wait(t, identifier)

	rr = testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost,
		"/auth/otp/verify", map[string]string{"identifier": identifier, "code": code}))
	testutil.AssertStatus(t, rr, http.StatusOK)

	resp := testutil.UnmarshalResponse[struct {
		AccessToken string `json:"accessToken"`
	}](t, rr)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return testutil.DoRequest(f.router, req)
}

func (f *fixture) deliverWebhook(t *testing.T, intentID, eventType string) *httptest.ResponseRecorder {
	t.Helper()
	payload := []byte(fmt.Sprintf(`{"type":%q,"data":{"object":{"id":%q}}}`, eventType, intentID))
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", gateway.SignPayload(payload, webhookSecret, time.Now()))
	return testutil.DoRequest(f.router, req)
}

func TestFundingJourney(t *testing.T) {
	f := newFixture(t)

	const (
		villager = "wanjiku@example.com"
		sponsor  = "daniel@example.com"
	)

	var (
		villagerToken string
		sponsorToken  string
		slotID        string
		intentID      string
	)

	testutil.Given(t, "a villager with a published slot", func(t *testing.T) {
		villagerToken = f.login(t, villager)

		rr := f.do(t, http.MethodPost, "/slots", villagerToken, map[string]any{
			"name":         "Amos Otieno",
			"age":          23,
			"county":       "Kisumu",
			"constituency": "Kisumu East",
			"ward":         "Kajulu",
			"story":        "Finished form four, has been saving for a license ever since.",
			"dream":        "Drive a matatu on the Kondele route",
			"licenseType":  "none",
			"programType":  "standard",
		})
		testutil.AssertStatus(t, rr, http.StatusCreated)

		created := testutil.UnmarshalResponse[slot.Slot](t, rr)
		require.NotEmpty(t, created.ID)
		slotID = created.ID
		assert.Equal(t, slot.StatusAvailable, created.Status)
		assert.True(t, decimal.NewFromInt(65000).Equal(created.TargetAmount),
			"standard program target, got %s", created.TargetAmount)

		rr = f.do(t, http.MethodGet, "/slots/next", "", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		next := testutil.UnmarshalResponse[slot.Slot](t, rr)
		assert.Equal(t, slotID, next.ID)
	})

	testutil.When(t, "a sponsor funds the slot in full", func(t *testing.T) {
		sponsorToken = f.login(t, sponsor)

		rr := f.do(t, http.MethodPost, "/payments/intent", sponsorToken, map[string]any{
			"slotId":      slotID,
			"amount":      65000,
			"kind":        "full",
			"sponsorName": "Daniel",
		})
		testutil.AssertStatus(t, rr, http.StatusCreated)

		intent := testutil.UnmarshalResponse[paymentsvc.PaymentIntent](t, rr)
		require.NotEmpty(t, intent.IntentID)
		intentID = intent.IntentID
		require.NotNil(t, intent.Contribution)
		assert.Equal(t, ledger.PaymentPending, intent.Contribution.PaymentStatus)

		// Pending money does not move the slot.
		rr = f.do(t, http.MethodGet, "/slots/"+slotID, "", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		current := testutil.UnmarshalResponse[slot.Slot](t, rr)
		assert.True(t, current.CurrentAmount.IsZero())

		rr = f.deliverWebhook(t, intentID, "payment_intent.succeeded")
		testutil.AssertStatus(t, rr, http.StatusOK)
		result := testutil.UnmarshalResponse[struct {
			Received bool   `json:"received"`
			Result   string `json:"result"`
		}](t, rr)
		assert.True(t, result.Received)
		assert.Equal(t, "applied", result.Result)
	})

	testutil.Then(t, "the slot, ledger, and reports reflect the funding", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/slots/"+slotID, "", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		funded := testutil.UnmarshalResponse[slot.Slot](t, rr)
		assert.Equal(t, slot.StatusFullyFunded, funded.Status)
		assert.True(t, decimal.NewFromInt(65000).Equal(funded.CurrentAmount))

		// Redelivered webhook is a no-op.
		rr = f.deliverWebhook(t, intentID, "payment_intent.succeeded")
		testutil.AssertStatus(t, rr, http.StatusOK)
		dup := testutil.UnmarshalResponse[struct {
			Result string `json:"result"`
		}](t, rr)
		assert.Equal(t, "duplicate", dup.Result)

		rr = f.do(t, http.MethodGet, "/slots/"+slotID, "", nil)
		after := testutil.UnmarshalResponse[slot.Slot](t, rr)
		assert.True(t, decimal.NewFromInt(65000).Equal(after.CurrentAmount))

		rr = f.do(t, http.MethodGet, "/slots/"+slotID+"/contributions", "", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		history := testutil.UnmarshalResponse[[]ledger.Contribution](t, rr)
		require.Len(t, *history, 1)
		assert.Equal(t, ledger.PaymentCompleted, (*history)[0].PaymentStatus)

		rr = f.do(t, http.MethodGet, "/stats", "", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		stats := testutil.UnmarshalResponse[statssvc.Stats](t, rr)
		assert.Equal(t, 1, stats.TotalSponsors)
		assert.Equal(t, 1, stats.TotalSlots)
		assert.Equal(t, 4, stats.FamiliesImpacted)
		assert.True(t, decimal.NewFromInt(65000).Equal(stats.TotalRaised))

		rr = f.do(t, http.MethodGet, "/sponsors/rankings", "", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		ranks := testutil.UnmarshalResponse[[]ledger.SponsorRank](t, rr)
		require.Len(t, *ranks, 1)
		assert.Equal(t, sponsor, (*ranks)[0].SponsorID)
		assert.Equal(t, 1, (*ranks)[0].Rank)

		rr = f.do(t, http.MethodGet, "/my/contributions", sponsorToken, nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		mine := testutil.UnmarshalResponse[[]ledger.Contribution](t, rr)
		require.Len(t, *mine, 1)

		// The completion and the fully-funded announcement went downstream.
		published := f.recorder.Events()
		require.Len(t, published, 2)
		assert.Equal(t, events.TypeContributionCompleted, published[0].Type)
		assert.Equal(t, events.TypeSlotFullyFunded, published[1].Type)

		// The funding landed in the durable trail as well.
		assert.Eventually(t, func() bool {
			entries, err := f.auditStore.ListRecent(context.Background(), 10)
			return err == nil && len(entries) == 2
		}, 2*time.Second, 10*time.Millisecond, "expected completed and fully-funded trail entries")
	})

	testutil.Then(t, "the sponsor and villager stay in touch", func(t *testing.T) {
		rr := f.do(t, http.MethodPost, "/messages", sponsorToken, map[string]any{
			"slotId":  slotID,
			"content": "Karibu! Tell me when training starts.",
		})
		testutil.AssertStatus(t, rr, http.StatusCreated)
		sent := testutil.UnmarshalResponse[message.Message](t, rr)
		assert.Equal(t, villager, sent.ReceiverID)

		rr = f.do(t, http.MethodGet, "/messages/"+slotID, villagerToken, nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		thread := testutil.UnmarshalResponse[[]message.Message](t, rr)
		require.Len(t, *thread, 1)

		rr = f.do(t, http.MethodPost, "/progress", villagerToken, map[string]any{
			"slotId":      slotID,
			"phase":       "training",
			"description": "Enrolled at the Kisumu driving school",
			"progress":    40,
		})
		testutil.AssertStatus(t, rr, http.StatusCreated)

		rr = f.do(t, http.MethodGet, "/progress/"+slotID, "", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		timeline := testutil.UnmarshalResponse[[]progress.Update](t, rr)
		require.Len(t, *timeline, 1)
		assert.Equal(t, 40, (*timeline)[0].Progress)
	})
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newFixture(t)

	payload := []byte(`{"type":"payment_intent.succeeded","data":{"object":{"id":"pi_x"}}}`)
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", gateway.SignPayload(payload, "whsec_other", time.Now()))

	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}
