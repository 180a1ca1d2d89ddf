package module

import "github.com/cybershieldio/sdk/pkg/scan"

// NewEmail creates the email controller.
func NewEmail(svc Service, n *scan.Normalizer, opts *Options) *Controller[scan.EmailResult] {
	return NewController(svc, EmailBinding(n), opts)
}

// NewSMS creates the SMS controller.
func NewSMS(svc Service, n *scan.Normalizer, opts *Options) *Controller[scan.SMSResult] {
	return NewController(svc, SMSBinding(n), opts)
}

// NewWeb creates the web controller.
func NewWeb(svc Service, n *scan.Normalizer, opts *Options) *Controller[scan.WebResult] {
	return NewController(svc, WebBinding(n), opts)
}

// Set holds one controller per module.
type Set struct {
	Email *Controller[scan.EmailResult]
	SMS   *Controller[scan.SMSResult]
	Phone *PhoneController
	Web   *Controller[scan.WebResult]
	File  *FileController
}

// NewSet creates all five controllers over the same service.
func NewSet(svc Service, reporter PhoneReporter, n *scan.Normalizer, opts *Options) *Set {
	return &Set{
		Email: NewEmail(svc, n, opts),
		SMS:   NewSMS(svc, n, opts),
		Phone: NewPhone(svc, reporter, n, opts),
		Web:   NewWeb(svc, n, opts),
		File:  NewFile(svc, n, opts),
	}
}

// Panels returns the controllers in module order.
func (s *Set) Panels() []Panel {
	return []Panel{s.Email, s.SMS, s.Phone, s.Web, s.File}
}

// Panel returns the controller for m, or nil.
func (s *Set) Panel(m scan.Module) Panel {
	switch m {
	case scan.ModuleEmail:
		return s.Email
	case scan.ModuleSMS:
		return s.SMS
	case scan.ModulePhone:
		return s.Phone
	case scan.ModuleWeb:
		return s.Web
	case scan.ModuleFile:
		return s.File
	}
	return nil
}
