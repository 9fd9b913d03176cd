package models

// AppointmentRequest is the POST /send-emails body. Fields are pointers so
// that a missing or null field is rejected while an empty string is accepted.
type AppointmentRequest struct {
	DoctorEmail     *string `json:"doctorEmail" binding:"required"`
	PatientEmail    *string `json:"patientEmail" binding:"required"`
	AppointmentDate *string `json:"appointmentDate" binding:"required"`
	DoctorName      *string `json:"doctorName" binding:"required"`
	PatientName     *string `json:"patientName" binding:"required"`
	HospitalName    *string `json:"hospitalName" binding:"required"`
}

func (r AppointmentRequest) Notification() AppointmentNotification {
	return AppointmentNotification{
		DoctorEmail:     deref(r.DoctorEmail),
		PatientEmail:    deref(r.PatientEmail),
		AppointmentDate: deref(r.AppointmentDate),
		DoctorName:      deref(r.DoctorName),
		PatientName:     deref(r.PatientName),
		HospitalName:    deref(r.HospitalName),
	}
}

// AppointmentNotification is a validated request, used to render the emails.
type AppointmentNotification struct {
	DoctorEmail     string
	PatientEmail    string
	AppointmentDate string
	DoctorName      string
	PatientName     string
	HospitalName    string
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type Recipient string

const (
	RecipientDoctor  Recipient = "doctor"
	RecipientPatient Recipient = "patient"
)

// Email is a rendered multipart/alternative message ready for the transport.
type Email struct {
	Recipient Recipient
	From      string
	To        string
	Subject   string
	Text      string
	HTML      string
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
