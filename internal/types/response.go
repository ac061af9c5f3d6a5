package types

import "gowa-gateway/pkg/whatsapp"

type ResponseStatus struct {
	Status    string `json:"status"`
	Connected bool   `json:"connected"`
	Message   string `json:"message"`
	HasQRCode bool   `json:"hasQrCode"`
}

type ResponseQRCode struct {
	QRCode    string `json:"qrCode,omitempty"`
	Status    string `json:"status"`
	Connected bool   `json:"connected"`
	Message   string `json:"message,omitempty"`
}

type ResponseSendMessage struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
	To        string `json:"to"`
}

type ResponseSendBatchMessage struct {
	Success bool                   `json:"success"`
	Total   int                    `json:"total"`
	Sent    int                    `json:"sent"`
	Failed  int                    `json:"failed"`
	Results []whatsapp.BatchResult `json:"results"`
}
