package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/RezaEskandarii/lrrctl/custom_errors"
	"github.com/RezaEskandarii/lrrctl/internal/lock"
	"github.com/RezaEskandarii/lrrctl/types"
)

// ScriptRequest describes a script plugin run. When FormURL is set, Form is saved
// there before the script is queued.
type ScriptRequest struct {
	Plugin  string
	Arg     string
	FormURL string
	Form    url.Values
}

// SaveForm posts form-encoded values to a settings page. Unlike regular calls the
// response must carry an explicit success flag.
func (c *Console) SaveForm(ctx context.Context, formURL string, values url.Values) bool {
	return c.submit(ctx, FormRequest(formURL, http.MethodPost, values), "Saved successfully!", "Error while saving")
}

// submit sends a form and requires a truthy success flag. The failure body is the
// server's message.
func (c *Console) submit(ctx context.Context, req Request, successMessage, errorHeading string) bool {
	result, err := c.api.Fetch(ctx, req)
	if err != nil {
		c.api.fail(ctx, errorHeading, err)
		return false
	}
	if !result.HasSuccessField() || !result.Succeeded() {
		msg := result.String("message")
		if msg == "" {
			msg = result.String("error")
		}
		c.api.fail(ctx, errorHeading, &custom_errors.ApplicationError{Message: msg})
		return false
	}
	c.api.notify(ctx, types.SuccessToast(successMessage))
	return true
}

// UsePlugin runs a metadata plugin against an archive and reports what it found.
func (c *Console) UsePlugin(ctx context.Context, plugin, archiveID, arg string) (types.PluginResult, bool) {
	query := url.Values{}
	query.Set("plugin", plugin)
	query.Set("id", archiveID)
	query.Set("arg", arg)

	var payload struct {
		Data types.PluginResult `json:"data"`
	}
	ok := c.api.Call(ctx, "/api/plugins/use?"+query.Encode(), http.MethodPost,
		"", "Error while fetching tags :",
		func(result types.RequestResult) error {
			if err := result.Decode(&payload); err != nil {
				return err
			}
			if payload.Data.Title != "" {
				c.api.notify(ctx, types.ToastMessage{Heading: "Archive title changed to :", Body: payload.Data.Title, Icon: types.IconInfo, AutoDismiss: true})
			}
			if payload.Data.NewTags != "" {
				c.api.notify(ctx, types.ToastMessage{Heading: "Added the following tags :", Body: payload.Data.NewTags, Icon: types.IconInfo, AutoDismiss: true})
			} else {
				c.api.notify(ctx, types.ToastMessage{Heading: "No new tags added!", Icon: types.IconInfo, AutoDismiss: true})
			}
			return nil
		})
	return payload.Data, ok
}

// RunPlugin saves the archive metadata, then runs the plugin on the saved state.
func (c *Console) RunPlugin(ctx context.Context, plugin, archiveID, arg, title, tags string) (types.PluginResult, bool) {
	if !c.SaveMetadata(ctx, archiveID, title, tags) {
		return types.PluginResult{}, false
	}
	return c.UsePlugin(ctx, plugin, archiveID, arg)
}

// RunScript queues a script plugin and waits for its result. Only one script runs at
// a time; the guard is released on every outcome.
func (c *Console) RunScript(ctx context.Context, req ScriptRequest) bool {
	if !c.acquire(ctx, lock.ScriptGuard) {
		return false
	}
	defer c.release(ctx, lock.ScriptGuard)

	if req.FormURL != "" && !c.SaveForm(ctx, req.FormURL, req.Form) {
		return false
	}

	query := url.Values{}
	query.Set("plugin", req.Plugin)
	query.Set("arg", req.Arg)

	var ticket types.JobTicket
	queued := c.api.Call(ctx, "/api/plugins/queue?"+query.Encode(), http.MethodPost,
		"", "Error while executing script:",
		func(result types.RequestResult) error {
			return result.Decode(&ticket)
		})
	if !queued {
		return false
	}

	succeeded := false
	c.poller.Poll(ctx, ticket.Job,
		func(status types.JobStatus) {
			var res types.ScriptResult
			if err := status.DecodeResult(&res); err != nil {
				panic(fmt.Errorf("unreadable script result: %w", err))
			}
			if res.Success.Int() != 1 {
				c.api.notify(ctx, types.ErrorToast("Script failed: "+res.Error, ""))
				return
			}
			c.api.notify(ctx, types.ToastMessage{
				Heading: "Script result",
				Body:    renderIndented(res.Data),
				Icon:    types.IconInfo,
			})
			succeeded = true
		}, nil)
	return succeeded
}

// renderValue renders a job result field as toast text.
func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func renderIndented(v any) string {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
