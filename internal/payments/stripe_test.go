package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func signPayload(secret string, ts int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestStripeClient_VerifyWebhook(t *testing.T) {
	client, err := NewStripeClient(StripeConfig{
		SecretKey:     "sk_test_x",
		WebhookSecret: "whsec_test",
	})
	assert.NoError(t, err)

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","payment_status":"paid"}}}`)
	ts := time.Now().Unix()
	header := fmt.Sprintf("t=%d,v1=%s", ts, signPayload("whsec_test", ts, payload))

	event, err := client.VerifyWebhook(payload, header)

	assert.NoError(t, err)
	assert.Equal(t, "checkout.session.completed", event.Type)

	var object struct {
		ID string `json:"id"`
	}
	assert.NoError(t, json.Unmarshal(event.Data.Object, &object))
	assert.Equal(t, "cs_1", object.ID)
}

func TestStripeClient_VerifyWebhook_BadSignature(t *testing.T) {
	client, _ := NewStripeClient(StripeConfig{
		SecretKey:     "sk_test_x",
		WebhookSecret: "whsec_test",
	})

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	ts := time.Now().Unix()
	header := fmt.Sprintf("t=%d,v1=%s", ts, signPayload("otro-secreto", ts, payload))

	_, err := client.VerifyWebhook(payload, header)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no coincide")
}

func TestStripeClient_VerifyWebhook_StaleTimestamp(t *testing.T) {
	client, _ := NewStripeClient(StripeConfig{
		SecretKey:     "sk_test_x",
		WebhookSecret: "whsec_test",
	})

	payload := []byte(`{}`)
	ts := time.Now().Add(-time.Hour).Unix()
	header := fmt.Sprintf("t=%d,v1=%s", ts, signPayload("whsec_test", ts, payload))

	_, err := client.VerifyWebhook(payload, header)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expiró")
}

func TestStripeClient_CreateCheckoutSession(t *testing.T) {
	var gotPath, gotAuth string
	var gotForm map[string][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth, _, _ = r.BasicAuth()
		_ = r.ParseForm()
		gotForm = r.PostForm
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":  "cs_123",
			"url": "https://checkout.example.com/cs_123",
		})
	}))
	defer server.Close()

	client, err := NewStripeClient(StripeConfig{
		SecretKey:  "sk_test_x",
		BaseURL:    server.URL,
		SuccessURL: "https://easyhome.app/pago/ok",
		CancelURL:  "https://easyhome.app/pago/cancelado",
	})
	assert.NoError(t, err)

	session, err := client.CreateCheckoutSession(context.Background(), CheckoutInput{
		PlanName:    "Plan Mensual",
		AmountCents: 9900,
		Currency:    "USD",
		Reference:   "user-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, "cs_123", session.ID)
	assert.Equal(t, "https://checkout.example.com/cs_123", session.URL)
	assert.Equal(t, "/v1/checkout/sessions", gotPath)
	assert.Equal(t, "sk_test_x", gotAuth)
	assert.Equal(t, "usd", gotForm["line_items[0][price_data][currency]"][0])
	assert.Equal(t, "9900", gotForm["line_items[0][price_data][unit_amount]"][0])
}

func TestStripeClient_CreateCheckoutSession_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","message":"Your card was declined."}}`))
	}))
	defer server.Close()

	client, _ := NewStripeClient(StripeConfig{SecretKey: "sk_test_x", BaseURL: server.URL})

	_, err := client.CreateCheckoutSession(context.Background(), CheckoutInput{
		PlanName:    "Plan Mensual",
		AmountCents: 9900,
		Currency:    "usd",
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "card was declined")
}
