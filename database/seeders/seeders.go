package seeders

import (
	"classtrack_go/database"
	"classtrack_go/models"
	"classtrack_go/utils"
	"log"
	"time"
)

// SeedAll runs all seeders
func SeedAll() {
	log.Println("Starting database seeding...")

	SeedRooms()
	SeedSubjects()
	SeedSessions()
	SeedStudents()
	SeedEnrolments()
	SeedQrCodes()

	log.Println("Database seeding completed successfully!")
}

// SeedRooms seeds the rooms table
func SeedRooms() {
	var count int64
	database.DB.Model(&models.Room{}).Count(&count)
	if count > 0 {
		log.Println("Rooms already seeded, skipping...")
		return
	}

	rooms := []models.Room{
		{
			Name:      "LT-1",
			Building:  "Engineering Block A",
			Latitude:  -37.799541,
			Longitude: 144.963926,
			Capacity:  220,
		},
		{
			Name:      "Lab 2.14",
			Building:  "Engineering Block B",
			Latitude:  -37.800102,
			Longitude: 144.964517,
			Capacity:  40,
		},
		{
			Name:      "Tutorial Room 3.02",
			Building:  "Science Block",
			Latitude:  -37.798877,
			Longitude: 144.962981,
			Capacity:  28,
		},
	}

	if err := database.DB.Create(&rooms).Error; err != nil {
		log.Printf("Failed to seed rooms: %v", err)
	}
}

// SeedSubjects seeds the subjects table
func SeedSubjects() {
	var count int64
	database.DB.Model(&models.Subject{}).Count(&count)
	if count > 0 {
		log.Println("Subjects already seeded, skipping...")
		return
	}

	subjects := []models.Subject{
		{
			Code:                "COMP30023",
			Name:                "Computer Systems",
			AttendanceThreshold: 0.80,
			PlannedWeeks:        12,
		},
		{
			Code:                "SWEN20003",
			Name:                "Object Oriented Software Development",
			AttendanceThreshold: 0.75,
			PlannedWeeks:        12,
		},
	}

	if err := database.DB.Create(&subjects).Error; err != nil {
		log.Printf("Failed to seed subjects: %v", err)
	}
}

// SeedSessions seeds lecture, lab and tutorial sessions
func SeedSessions() {
	var count int64
	database.DB.Model(&models.Session{}).Count(&count)
	if count > 0 {
		log.Println("Sessions already seeded, skipping...")
		return
	}

	sessions := []models.Session{
		{SubjectID: 1, Kind: models.SessionKindLecture, Weekday: 1, StartTime: "10:00", EndTime: "11:50", RoomID: 1},
		{SubjectID: 1, Kind: models.SessionKindLab, Weekday: 3, StartTime: "14:00", EndTime: "15:50", RoomID: 2},
		{SubjectID: 1, Kind: models.SessionKindTutorial, Weekday: 4, StartTime: "09:00", EndTime: "09:50", RoomID: 3},
		{SubjectID: 2, Kind: models.SessionKindLecture, Weekday: 2, StartTime: "13:00", EndTime: "14:50", RoomID: 1},
	}

	if err := database.DB.Create(&sessions).Error; err != nil {
		log.Printf("Failed to seed sessions: %v", err)
	}
}

// SeedStudents seeds the students table
func SeedStudents() {
	var count int64
	database.DB.Model(&models.Student{}).Count(&count)
	if count > 0 {
		log.Println("Students already seeded, skipping...")
		return
	}

	students := []models.Student{
		{FirstName: "Priya", LastName: "Sharma", Email: "priya.sharma@student.example.edu"},
		{FirstName: "Tom", LastName: "Nguyen", Email: "tom.nguyen@student.example.edu"},
		{FirstName: "Alice", LastName: "Walker", Email: "alice.walker@student.example.edu"},
	}

	if err := database.DB.Create(&students).Error; err != nil {
		log.Printf("Failed to seed students: %v", err)
	}
}

// SeedEnrolments enrols the demo students and assigns tutorial rosters
func SeedEnrolments() {
	var count int64
	database.DB.Model(&models.Enrolment{}).Count(&count)
	if count > 0 {
		log.Println("Enrolments already seeded, skipping...")
		return
	}

	enrolments := []models.Enrolment{
		{StudentID: 1, SubjectID: 1},
		{StudentID: 2, SubjectID: 1},
		{StudentID: 3, SubjectID: 1},
		{StudentID: 1, SubjectID: 2},
	}
	if err := database.DB.Create(&enrolments).Error; err != nil {
		log.Printf("Failed to seed enrolments: %v", err)
	}

	assignments := []models.SessionAssignment{
		{StudentID: 1, SessionID: 3},
		{StudentID: 2, SessionID: 3},
	}
	if err := database.DB.Create(&assignments).Error; err != nil {
		log.Printf("Failed to seed session assignments: %v", err)
	}
}

// SeedQrCodes issues a demo code with the two-window pattern for week 1
func SeedQrCodes() {
	var count int64
	database.DB.Model(&models.QrCode{}).Count(&count)
	if count > 0 {
		log.Println("QR codes already seeded, skipping...")
		return
	}

	token, err := utils.GenerateToken(48)
	if err != nil {
		log.Printf("Failed to generate demo token: %v", err)
		return
	}

	start := time.Now().Truncate(time.Hour)
	code := models.QrCode{
		SessionID:       1,
		Week:            1,
		Token:           token,
		GeofenceRadiusM: utils.PtrFloat(75),
		Windows: []models.ValidityWindow{
			{Ordinal: 1, StartsAt: start, EndsAt: start.Add(5 * time.Minute)},
			{Ordinal: 2, StartsAt: start.Add(50 * time.Minute), EndsAt: start.Add(55 * time.Minute)},
		},
	}

	if err := database.DB.Create(&code).Error; err != nil {
		log.Printf("Failed to seed QR code: %v", err)
		return
	}
	log.Printf("Seeded demo QR token: %s", token)
}
