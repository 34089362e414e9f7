package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRegisterRequestValidate(t *testing.T) {
	valid := RegisterRequest{
		Username:       "ana",
		Email:          "ana@example.com",
		Identification: "1234567890",
		Password:       "s3cret-pass",
		AccountClass:   "current",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	invalid := RegisterRequest{
		Email:          "not-an-email",
		Identification: "12345678901",
		PhoneNumber:    "12ab",
		Password:       "short",
		AccountClass:   "GOLD",
	}
	err := invalid.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, field := range []string{"username", "email", "identification", "phoneNumber", "password", "accountClass"} {
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("expected error to mention %s, got %q", field, err.Error())
		}
	}
}

func TestTransferRequestValidate(t *testing.T) {
	req := TransferRequest{
		SourceAccountNumber:      "1000000001",
		DestinationAccountNumber: "100000000x",
		Amount:                   decimal.Zero,
	}
	err := req.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "destinationAccountNumber") || !strings.Contains(err.Error(), "amount") {
		t.Fatalf("unexpected error %q", err.Error())
	}
	if strings.Contains(err.Error(), "sourceAccountNumber") {
		t.Fatalf("source account is valid, got %q", err.Error())
	}
}

func TestBillPaymentRequestValidate(t *testing.T) {
	req := BillPaymentRequest{
		AccountNumber: "1000000001",
		ServiceType:   "water",
		BillNumber:    "W-1",
		Amount:        decimal.RequireFromString("12.50"),
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	req.ServiceType = "GAS"
	req.BillNumber = strings.Repeat("9", 51)
	err := req.Validate()
	if err == nil || !strings.Contains(err.Error(), "serviceType") || !strings.Contains(err.Error(), "billNumber") {
		t.Fatalf("expected serviceType and billNumber errors, got %v", err)
	}
}

func TestDepositRequestAcceptsStringAndNumberAmounts(t *testing.T) {
	for _, body := range []string{
		`{"accountNumber":"1000000001","amount":"50.25"}`,
		`{"accountNumber":"1000000001","amount":50.25}`,
	} {
		var req DepositRequest
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			t.Fatalf("decode %s: %v", body, err)
		}
		if !req.Amount.Equal(decimal.RequireFromString("50.25")) {
			t.Fatalf("expected 50.25, got %s", req.Amount)
		}
		if err := req.Validate(); err != nil {
			t.Fatalf("expected valid request, got %v", err)
		}
	}
}

func TestWithdrawRequestValidate(t *testing.T) {
	err := WithdrawRequest{AccountNumber: "1", Amount: decimal.RequireFromString("-1")}.Validate()
	if err == nil || !strings.Contains(err.Error(), "accountNumber") || !strings.Contains(err.Error(), "amount") {
		t.Fatalf("expected accountNumber and amount errors, got %v", err)
	}
}
