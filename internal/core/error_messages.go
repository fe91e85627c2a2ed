package core

// error_messages.go turns technical errors into coded messages for people.
//
//	Code     Raised by                              Meaning
//	FILE001  ErrFileTooLarge                        upload over the size limit
//	FILE002  ErrMalformedInput                      not a header plus data lines
//	FILE003  "encoding error"                       undecodable bytes
//	FILE004  "no file provided"                     multipart form without a file
//	FILE005  ErrEmptyFile                           blank upload
//	TBL001   ErrNoTable, "workspace not found"      nothing to show
//	EDT001   ErrColumnNotEditable                   edit outside the stock column
//	EDT002   ErrEditNotFound                        unknown history entry
//	ANL001   "analysis not configured"              no Gemini key
//	ANL002   "authentication failed"                Gemini rejected the key
//	ANL003   "too many analyses"                    limiter wait expired
//	ANL004   "empty query"                          blank question
//	AUTH001  "missing api key"                      /api without a key
//	AUTH002  "invalid api key"                      /api with an unknown key
//	REQ001   "invalid request"                      unparseable form or JSON
//	UPL004   context.Canceled                       client went away
//	UPL005   context.DeadlineExceeded               request timed out
//	RATE001  "rate limit"                           per-IP limiter
//	ERR000   anything else; see the server log
//
// Errors owned by this package are matched with errors.Is. Errors from other
// packages are matched by a case-insensitive substring of their text, first
// match wins, so core does not import its callers.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorRule struct {
	target  error  // matched with errors.Is when set
	pattern string // lower-case substring otherwise
	msg     UserMessage
}

var errorRules = []errorRule{
	{target: ErrFileTooLarge, pattern: "file too large", msg: UserMessage{
		"File exceeds the maximum upload size", "Remove unused columns or split the file", "FILE001"}},
	{target: ErrMalformedInput, pattern: "invalid csv", msg: UserMessage{
		"File is not a valid CSV", "Include a header line and at least one comma-separated data line", "FILE002"}},
	{pattern: "encoding error", msg: UserMessage{
		"File contains invalid characters", "Save file as UTF-8 encoding", "FILE003"}},
	{pattern: "no file provided", msg: UserMessage{
		"No file was selected", "Please select a CSV file to upload", "FILE004"}},
	{target: ErrEmptyFile, pattern: "empty file", msg: UserMessage{
		"The uploaded file is empty", "Please upload a CSV file with data rows", "FILE005"}},

	{target: ErrNoTable, pattern: "no table loaded", msg: UserMessage{
		"No inventory file is loaded", "Upload an inventory file first", "TBL001"}},
	{pattern: "workspace not found", msg: UserMessage{
		"Workspace not found", "It may have expired. Upload the file again", "TBL001"}},

	{target: ErrColumnNotEditable, pattern: "column not editable", msg: UserMessage{
		"Only the quantity column can be edited", "Edit a cell in the highlighted stock column", "EDT001"}},
	{target: ErrEditNotFound, pattern: "edit not found", msg: UserMessage{
		"That edit is no longer in the history", "Refresh the history and try again", "EDT002"}},

	{pattern: "analysis not configured", msg: UserMessage{
		"Analysis is not configured", "Set GEMINI_API_KEY and restart the server", "ANL001"}},
	{pattern: "authentication failed", msg: UserMessage{
		"The analysis service rejected the API key", "Check that the API key is valid and has access to the model", "ANL002"}},
	{pattern: "too many analyses", msg: UserMessage{
		"Too many analyses are running", "Please wait a moment and try again", "ANL003"}},
	{pattern: "empty query", msg: UserMessage{
		"No question was asked", "Type a question about your inventory", "ANL004"}},

	{pattern: "missing api key", msg: UserMessage{
		"An API key is required", "Send the key in the X-API-Key header", "AUTH001"}},
	{pattern: "invalid api key", msg: UserMessage{
		"The API key was not accepted", "Check the key with your administrator", "AUTH002"}},

	{pattern: "invalid request", msg: UserMessage{
		"The request could not be understood", "Check the submitted values and try again", "REQ001"}},
	{target: context.Canceled, pattern: "context canceled", msg: UserMessage{
		"Request was cancelled", "Please try again", "UPL004"}},
	{target: context.DeadlineExceeded, pattern: "context deadline exceeded", msg: UserMessage{
		"Request timed out", "Try a smaller file or check your connection", "UPL005"}},

	{pattern: "rate limit", msg: UserMessage{
		"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

// defaultMessage is returned when no rule matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
//	msg := MapError(fmt.Errorf("%w: no comma found", ErrMalformedInput))
//	// msg.Code == "FILE002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	for _, r := range errorRules {
		if r.target != nil && errors.Is(err, r.target) {
			return r.msg
		}
	}
	text := strings.ToLower(err.Error())
	for _, r := range errorRules {
		if strings.Contains(text, r.pattern) {
			return r.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Code == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than ERR000.
func IsUserFacing(err error) bool {
	return err != nil && MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string { return e.User.Message }

func (e *UserError) Unwrap() error { return e.Technical }

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
