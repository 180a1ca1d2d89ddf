package scan

import (
	"encoding/json"
	"strings"

	sdkerrors "github.com/cybershieldio/sdk/pkg/errors"
)

// Request is a scan payload addressed to one module's endpoint.
type Request interface {
	Module() Module
	// Empty reports whether the payload has nothing to scan.
	Empty() bool
}

// EmailRequest is the body of POST /api/scan.
type EmailRequest struct {
	Content string `json:"content"`
	Subject string `json:"subject"`
	Sender  string `json:"sender"`
}

// SMSRequest is the body of POST /api/scan/sms.
type SMSRequest struct {
	Content string `json:"content"`
	Sender  string `json:"sender"`
}

// PhoneRequest is the body of POST /api/scan/phone. Number may still carry
// display punctuation; the service canonicalizes it.
type PhoneRequest struct {
	Number string `json:"number"`
}

// WebRequest is the body of POST /api/scan/web.
type WebRequest struct {
	URL string `json:"url"`
}

// FileRequest is the body of POST /api/scan/file. Only metadata is sent;
// file contents never leave the client.
type FileRequest struct {
	FileName string `json:"filename"`
	Type     string `json:"type"`
}

// PhoneReport is the body of POST /api/report/phone.
type PhoneReport struct {
	Number      string `json:"number"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (EmailRequest) Module() Module { return ModuleEmail }
func (SMSRequest) Module() Module   { return ModuleSMS }
func (PhoneRequest) Module() Module { return ModulePhone }
func (WebRequest) Module() Module   { return ModuleWeb }
func (FileRequest) Module() Module  { return ModuleFile }

func (r EmailRequest) Empty() bool { return blank(r.Content) }
func (r SMSRequest) Empty() bool   { return blank(r.Content) }
func (r PhoneRequest) Empty() bool { return blank(r.Number) }
func (r WebRequest) Empty() bool   { return blank(r.URL) }
func (r FileRequest) Empty() bool  { return blank(r.FileName) }

// Empty reports whether the report lacks a number or category.
func (r PhoneReport) Empty() bool {
	return blank(r.Number) || blank(r.Category)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

var (
	_ Request = EmailRequest{}
	_ Request = SMSRequest{}
	_ Request = PhoneRequest{}
	_ Request = WebRequest{}
	_ Request = FileRequest{}
)

// DecodeRequest decodes a JSON scan payload for module m.
func DecodeRequest(m Module, data []byte) (Request, error) {
	const op = "scan.DecodeRequest"
	var (
		req Request
		err error
	)
	switch m {
	case ModuleEmail:
		var r EmailRequest
		err = json.Unmarshal(data, &r)
		req = r
	case ModuleSMS:
		var r SMSRequest
		err = json.Unmarshal(data, &r)
		req = r
	case ModulePhone:
		var r PhoneRequest
		err = json.Unmarshal(data, &r)
		req = r
	case ModuleWeb:
		var r WebRequest
		err = json.Unmarshal(data, &r)
		req = r
	case ModuleFile:
		var r FileRequest
		err = json.Unmarshal(data, &r)
		req = r
	default:
		return nil, sdkerrors.E(op, sdkerrors.ErrUnknownModule, string(m))
	}
	if err != nil {
		return nil, sdkerrors.E(sdkerrors.KindInvalidInput, op, "malformed request body", err)
	}
	return req, nil
}
