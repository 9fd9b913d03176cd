package services

import (
	"fmt"
	"html"

	"github.com/franzego/apptnotifier/internal/models"
)

const (
	DoctorSubject  = "New Appointment Scheduled"
	PatientSubject = "Appointment Confirmation"
)

const doctorText = `Dear Dr. %s,

A new appointment has been scheduled with the following details:

Patient: %s
Date: %s

Please ensure you're available at the scheduled time.

Best regards,
Your Hospital Team
`

const doctorHTML = `<html>
<body>
    <h1>New Appointment Scheduled</h1>
    <p>Dear Dr. %s,</p>
    <p>A new appointment has been scheduled with the following details:</p>
    <ul>
        <li><strong>Patient:</strong> %s</li>
        <li><strong>Date:</strong> %s</li>
    </ul>
    <p>Please ensure you're available at the scheduled time.</p>
    <p>Best regards,<br>Your Hospital Team</p>
</body>
</html>
`

const patientText = `Dear %s,

Your appointment has been successfully scheduled with the following details:

Doctor: Dr. %s
Date: %s
Location: %s

If you need to reschedule or cancel, please contact us at least 24 hours in advance.

Best regards,
Your Hospital Team
`

const patientHTML = `<html>
<body>
    <h1>Appointment Confirmation</h1>
    <p>Dear %s,</p>
    <p>Your appointment has been successfully scheduled with the following details:</p>
    <ul>
        <li><strong>Doctor:</strong> Dr. %s</li>
        <li><strong>Date:</strong> %s</li>
        <li><strong>Location:</strong> %s</li>
    </ul>
    <p>If you need to reschedule or cancel, please contact us at least 24 hours in advance.</p>
    <p>Best regards,<br>Your Hospital Team</p>
</body>
</html>
`

// RenderDoctorEmail builds the notice sent to the doctor. It never mentions the hospital.
func RenderDoctorEmail(from string, n models.AppointmentNotification) models.Email {
	return models.Email{
		Recipient: models.RecipientDoctor,
		From:      from,
		To:        n.DoctorEmail,
		Subject:   DoctorSubject,
		Text:      fmt.Sprintf(doctorText, n.DoctorName, n.PatientName, n.AppointmentDate),
		HTML: fmt.Sprintf(doctorHTML,
			html.EscapeString(n.DoctorName),
			html.EscapeString(n.PatientName),
			html.EscapeString(n.AppointmentDate),
		),
	}
}

// RenderPatientEmail builds the confirmation sent to the patient.
func RenderPatientEmail(from string, n models.AppointmentNotification) models.Email {
	return models.Email{
		Recipient: models.RecipientPatient,
		From:      from,
		To:        n.PatientEmail,
		Subject:   PatientSubject,
		Text:      fmt.Sprintf(patientText, n.PatientName, n.DoctorName, n.AppointmentDate, n.HospitalName),
		HTML: fmt.Sprintf(patientHTML,
			html.EscapeString(n.PatientName),
			html.EscapeString(n.DoctorName),
			html.EscapeString(n.AppointmentDate),
			html.EscapeString(n.HospitalName),
		),
	}
}
