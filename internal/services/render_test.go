package services

import (
	"testing"

	"github.com/franzego/apptnotifier/internal/models"
	"github.com/stretchr/testify/assert"
)

func examplePayload() models.AppointmentNotification {
	return models.AppointmentNotification{
		DoctorEmail:     "d@x.com",
		PatientEmail:    "p@x.com",
		AppointmentDate: "2024-06-01 10:00",
		DoctorName:      "Smith",
		PatientName:     "Jane Doe",
		HospitalName:    "General Hospital",
	}
}

func TestRenderDoctorEmail(t *testing.T) {
	n := examplePayload()
	email := RenderDoctorEmail("clinic@example.com", n)

	assert.Equal(t, models.RecipientDoctor, email.Recipient)
	assert.Equal(t, "clinic@example.com", email.From)
	assert.Equal(t, n.DoctorEmail, email.To)
	assert.Equal(t, "New Appointment Scheduled", email.Subject)

	for _, body := range []string{email.Text, email.HTML} {
		assert.NotEmpty(t, body)
		assert.Contains(t, body, "Dr. Smith")
		assert.Contains(t, body, n.PatientName)
		assert.Contains(t, body, n.AppointmentDate)
		assert.NotContains(t, body, n.HospitalName)
	}
	assert.Contains(t, email.HTML, "<h1>New Appointment Scheduled</h1>")
}

func TestRenderPatientEmail(t *testing.T) {
	n := examplePayload()
	email := RenderPatientEmail("clinic@example.com", n)

	assert.Equal(t, models.RecipientPatient, email.Recipient)
	assert.Equal(t, "clinic@example.com", email.From)
	assert.Equal(t, n.PatientEmail, email.To)
	assert.Equal(t, "Appointment Confirmation", email.Subject)

	for _, body := range []string{email.Text, email.HTML} {
		assert.NotEmpty(t, body)
		assert.Contains(t, body, "Dear "+n.PatientName)
		assert.Contains(t, body, "Dr. "+n.DoctorName)
		assert.Contains(t, body, n.AppointmentDate)
		assert.Contains(t, body, n.HospitalName)
		assert.Contains(t, body, "at least 24 hours in advance")
	}
}

func TestRenderDoctorEmail_NeverLeaksHospital(t *testing.T) {
	n := examplePayload()
	n.HospitalName = "St. Unmentionable Clinic"
	email := RenderDoctorEmail("clinic@example.com", n)

	assert.NotContains(t, email.Text, n.HospitalName)
	assert.NotContains(t, email.HTML, n.HospitalName)
}

func TestRender_EscapesHTMLOnly(t *testing.T) {
	n := examplePayload()
	n.PatientName = `Jane <script>alert("x")</script>`
	n.HospitalName = "Mercy & Grace"

	doctor := RenderDoctorEmail("clinic@example.com", n)
	patient := RenderPatientEmail("clinic@example.com", n)

	assert.Contains(t, doctor.Text, n.PatientName)
	assert.NotContains(t, doctor.HTML, "<script>")
	assert.Contains(t, doctor.HTML, "&lt;script&gt;")

	assert.Contains(t, patient.Text, "Mercy & Grace")
	assert.Contains(t, patient.HTML, "Mercy &amp; Grace")
}
