package mailer

import "errors"

var (
	ErrNoRecipient        = errors.New("mailer: no recipient")
	ErrNoSubject          = errors.New("mailer: no subject")
	ErrNoContent          = errors.New("mailer: no html content")
	ErrTemplateNotFound   = errors.New("mailer: template not found")
	ErrLayoutNotFound     = errors.New("mailer: layout not found")
	ErrRenderFailed       = errors.New("mailer: render failed")
	ErrSendFailed         = errors.New("mailer: send failed")
	ErrInvalidFrontmatter = errors.New("mailer: invalid front matter")
)
