package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	sdkerrors "github.com/cybershieldio/sdk/pkg/errors"
	"github.com/cybershieldio/sdk/pkg/scan"
)

// SubmitScan posts payload to the module's scan endpoint and returns the
// raw result. Only a 2xx response whose body is a JSON object counts as a
// result. Scans are never retried.
func (c *Client) SubmitScan(ctx context.Context, module scan.Module, payload any) (scan.Raw, error) {
	const op = "client.SubmitScan"
	if !module.IsValid() {
		return nil, sdkerrors.E(op, sdkerrors.ErrUnknownModule, string(module))
	}

	data, err := c.doRequest(ctx, op, http.MethodPost, module.Endpoint(), payload)
	if err != nil {
		return nil, err
	}

	var raw scan.Raw
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, sdkerrors.E(sdkerrors.KindDecode, op, "decode scan result", err)
	}
	if raw == nil {
		return nil, sdkerrors.E(sdkerrors.KindDecode, op, "empty scan result")
	}
	c.logger.Debug("%s scan completed: %s", module, raw.Level())
	return raw, nil
}

// FetchHistory returns the stored records for module. Null entries are
// dropped and a null body yields an empty list.
func (c *Client) FetchHistory(ctx context.Context, module scan.Module) ([]scan.Raw, error) {
	const op = "client.FetchHistory"
	if !module.IsValid() {
		return nil, sdkerrors.E(op, sdkerrors.ErrUnknownModule, string(module))
	}

	var entries []scan.Raw
	if err := c.getJSON(ctx, op, historyPath(module), &entries); err != nil {
		return nil, err
	}

	out := make([]scan.Raw, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

// ClearHistory deletes every stored record for module.
func (c *Client) ClearHistory(ctx context.Context, module scan.Module) error {
	const op = "client.ClearHistory"
	if !module.IsValid() {
		return sdkerrors.E(op, sdkerrors.ErrUnknownModule, string(module))
	}
	if _, err := c.doRequest(ctx, op, http.MethodDelete, historyPath(module), nil); err != nil {
		return err
	}
	c.logger.Info("cleared %s history", module)
	return nil
}

func historyPath(module scan.Module) string {
	return "/api/history?type=" + url.QueryEscape(module.HistoryType())
}
