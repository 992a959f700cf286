package classify

import (
	"sort"
	"strings"

	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
)

// Taxonomy maps exact appointment-type labels to their service mapping.
type Taxonomy map[string]entities.ServiceMapping

// DefaultTaxonomy returns the clinic's appointment-type master list, as it
// appears across the weekly tracking reports and the practice-management
// type exports.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		// Dentistry / NEAT
		"NEAT New":       {Category: entities.CategoryDental, Department: "Dentistry", RequiresDVM: false, DurationMinutes: 30},
		"NEAT Returning": {Category: entities.CategoryDental, Department: "Dentistry", RequiresDVM: false, DurationMinutes: 20},
		"NEAT (Nails.Ears.Anal Glands) Returning": {Category: entities.CategoryDental, Department: "Dentistry", RequiresDVM: false, DurationMinutes: 20},
		"NAD New":               {Category: entities.CategoryDental, Department: "Dentistry", RequiresDVM: true, DurationMinutes: 45},
		"NAD Returning":         {Category: entities.CategoryDental, Department: "Dentistry", RequiresDVM: true, DurationMinutes: 30},
		"GDD (New)":             {Category: entities.CategoryDental, Department: "Dentistry", RequiresDVM: true, DurationMinutes: 45},
		"GDD (Returning)":       {Category: entities.CategoryDental, Department: "Dentistry", RequiresDVM: true, DurationMinutes: 30},
		"OE New":                {Category: entities.CategoryDental, Department: "Dentistry", RequiresDVM: true, DurationMinutes: 30},
		"OE Returning":          {Category: entities.CategoryDental, Department: "Dentistry", RequiresDVM: true, DurationMinutes: 20},
		"Oral Exam (New)":       {Category: entities.CategoryDental, Department: "Dentistry", RequiresDVM: true, DurationMinutes: 30},
		"Oral Exam (Returning)": {Category: entities.CategoryDental, Department: "Dentistry", RequiresDVM: true, DurationMinutes: 20},
		"Dental Avail":          {Category: entities.CategoryDental, Department: "Dentistry", RequiresDVM: false, DurationMinutes: 0},

		// Advanced Procedures
		"AP":                      {Category: entities.CategoryAP, Department: "Advanced Procedures", RequiresDVM: true, DurationMinutes: 120},
		"Advanced Procedure":      {Category: entities.CategoryAP, Department: "Advanced Procedures", RequiresDVM: true, DurationMinutes: 120},
		"OE/AP":                   {Category: entities.CategoryAP, Department: "Advanced Procedures", RequiresDVM: true, DurationMinutes: 60},
		"OE Possible Same Day AP": {Category: entities.CategoryAP, Department: "Advanced Procedures", RequiresDVM: true, DurationMinutes: 60},
		"AP Avail":                {Category: entities.CategoryAP, Department: "Advanced Procedures", RequiresDVM: false, DurationMinutes: 0},
		"Post AP Recheck":         {Category: entities.CategoryAP, Department: "Advanced Procedures", RequiresDVM: true, DurationMinutes: 20},

		// Wellness / Veterinary Exams
		"VE New":                    {Category: entities.CategoryWellness, Department: "Wellness", RequiresDVM: true, DurationMinutes: 40},
		"VE Returning":              {Category: entities.CategoryWellness, Department: "Wellness", RequiresDVM: true, DurationMinutes: 30},
		"Veterinary Exam New":       {Category: entities.CategoryWellness, Department: "Wellness", RequiresDVM: true, DurationMinutes: 40},
		"Veterinary Exam Returning": {Category: entities.CategoryWellness, Department: "Wellness", RequiresDVM: true, DurationMinutes: 30},
		"VE Avail":                  {Category: entities.CategoryWellness, Department: "Wellness", RequiresDVM: false, DurationMinutes: 0},
		"UC Openings":               {Category: entities.CategoryWellness, Department: "Wellness", RequiresDVM: true, DurationMinutes: 30},
		"Urgent Care (New)":         {Category: entities.CategoryWellness, Department: "Wellness", RequiresDVM: true, DurationMinutes: 45},
		"Urgent Care (Returning)":   {Category: entities.CategoryWellness, Department: "Wellness", RequiresDVM: true, DurationMinutes: 30},
		"Drop Off Urgent Care":      {Category: entities.CategoryWellness, Department: "Wellness", RequiresDVM: true, DurationMinutes: 60},

		// Add-on Services
		"Tech Services":            {Category: entities.CategoryAddon, Department: "Add-on Services", RequiresDVM: false, DurationMinutes: 15},
		"Tech Services (VX,AG,NT)": {Category: entities.CategoryAddon, Department: "Add-on Services", RequiresDVM: false, DurationMinutes: 15},
		"Bloodwork":                {Category: entities.CategoryAddon, Department: "Add-on Services", RequiresDVM: false, DurationMinutes: 15},
		"Add-on Avail":             {Category: entities.CategoryAddon, Department: "Add-on Services", RequiresDVM: false, DurationMinutes: 0},

		// Imaging
		"Imaging": {Category: entities.CategoryImaging, Department: "Imaging", RequiresDVM: true, DurationMinutes: 30},

		// Surgery
		"Surgery":                   {Category: entities.CategorySurgery, Department: "Surgery", RequiresDVM: true, DurationMinutes: 180},
		"Surgery Avail":             {Category: entities.CategorySurgery, Department: "Surgery", RequiresDVM: false, DurationMinutes: 0},
		"Surgery Consult New":       {Category: entities.CategorySurgery, Department: "Surgery", RequiresDVM: true, DurationMinutes: 45},
		"Surgery Consult Returning": {Category: entities.CategorySurgery, Department: "Surgery", RequiresDVM: true, DurationMinutes: 30},

		// Exotics
		"EX Wellness New":          {Category: entities.CategoryExotic, Department: "Exotics", RequiresDVM: true, DurationMinutes: 40},
		"EX Wellness Returning":    {Category: entities.CategoryExotic, Department: "Exotics", RequiresDVM: true, DurationMinutes: 30},
		"EX- Veterinary Exam- NEW": {Category: entities.CategoryExotic, Department: "Exotics", RequiresDVM: true, DurationMinutes: 40},
		"EX Recheck":               {Category: entities.CategoryExotic, Department: "Exotics", RequiresDVM: true, DurationMinutes: 20},
		"EX Tech":                  {Category: entities.CategoryExotic, Department: "Exotics", RequiresDVM: false, DurationMinutes: 15},
		"EX Sick New":              {Category: entities.CategoryExotic, Department: "Exotics", RequiresDVM: true, DurationMinutes: 45},
		"EX Sick Returning":        {Category: entities.CategoryExotic, Department: "Exotics", RequiresDVM: true, DurationMinutes: 30},
		"EX Surgery":               {Category: entities.CategoryExotic, Department: "Exotics", RequiresDVM: true, DurationMinutes: 120},
		"EX Wellness Avail":        {Category: entities.CategoryExotic, Department: "Exotics", RequiresDVM: false, DurationMinutes: 0},
		"EX Recheck Avail":         {Category: entities.CategoryExotic, Department: "Exotics", RequiresDVM: false, DurationMinutes: 0},
		"EX Tech Avail":            {Category: entities.CategoryExotic, Department: "Exotics", RequiresDVM: false, DurationMinutes: 0},
		"EX Sick Avail":            {Category: entities.CategoryExotic, Department: "Exotics", RequiresDVM: false, DurationMinutes: 0},
		"EX Same Day UC Avail":     {Category: entities.CategoryExotic, Department: "Exotics", RequiresDVM: false, DurationMinutes: 0},

		// Internal Medicine
		"IM Consult New":         {Category: entities.CategoryInternalMed, Department: "Internal Medicine", RequiresDVM: true, DurationMinutes: 60},
		"IM Consult Returning":   {Category: entities.CategoryInternalMed, Department: "Internal Medicine", RequiresDVM: true, DurationMinutes: 45},
		"IM - Consult - Recheck": {Category: entities.CategoryInternalMed, Department: "Internal Medicine", RequiresDVM: true, DurationMinutes: 30},
		"IM Recheck":             {Category: entities.CategoryInternalMed, Department: "Internal Medicine", RequiresDVM: true, DurationMinutes: 30},
		"IM Tech":                {Category: entities.CategoryInternalMed, Department: "Internal Medicine", RequiresDVM: false, DurationMinutes: 15},
		"IM Procedure":           {Category: entities.CategoryInternalMed, Department: "Internal Medicine", RequiresDVM: true, DurationMinutes: 90},
		"IM Avail":               {Category: entities.CategoryInternalMed, Department: "Internal Medicine", RequiresDVM: false, DurationMinutes: 0},

		// Cardiology
		"Dr. D'Urso":    {Category: entities.CategoryCardiology, Department: "Cardiology", RequiresDVM: true, DurationMinutes: 60},
		"Dr. Saelinger": {Category: entities.CategoryCardiology, Department: "Cardiology", RequiresDVM: true, DurationMinutes: 60},

		// Type-report extras
		"Available Slot":               {Category: entities.CategoryOther, Department: "General", RequiresDVM: false, DurationMinutes: 0},
		"zVET SERVICES ONLY":           {Category: entities.CategoryOther, Department: "General", RequiresDVM: false, DurationMinutes: 0},
		"MP - Pickup":                  {Category: entities.CategoryMobile, Department: "Mobile/MPMV", RequiresDVM: false, DurationMinutes: 15},
		"MP - Shipment":                {Category: entities.CategoryMobile, Department: "Mobile/MPMV", RequiresDVM: false, DurationMinutes: 15},
		"MP - Meds Done":               {Category: entities.CategoryMobile, Department: "Mobile/MPMV", RequiresDVM: false, DurationMinutes: 10},
		"VetFM Client":                 {Category: entities.CategoryWellness, Department: "Wellness", RequiresDVM: true, DurationMinutes: 30},
		"WAITLIST - Not Confirmed":     {Category: entities.CategoryOther, Department: "General", RequiresDVM: false, DurationMinutes: 0},
		"Sherman Oaks - Main Facility": {Category: entities.CategoryOther, Department: "General", RequiresDVM: false, DurationMinutes: 0},
	}
}

// DepartmentTypes lists one department's appointment types for downstream
// scheduling consumers.
type DepartmentTypes struct {
	Department       string   `json:"department"`
	ServiceCode      string   `json:"service_code"`
	AppointmentTypes []string `json:"appointment_types"`
	RequiresDVM      bool     `json:"requires_dvm"`
}

// DepartmentSummary groups the taxonomy by department, dropping OTHER
// entries and availability placeholders. A department requires a DVM when
// any of its types does.
func (t Taxonomy) DepartmentSummary() []DepartmentTypes {
	byDept := map[string]*DepartmentTypes{}

	for label, mapping := range t {
		if mapping.Category == entities.CategoryOther {
			continue
		}
		if strings.Contains(label, "Avail") {
			continue
		}
		dept, ok := byDept[mapping.Department]
		if !ok {
			dept = &DepartmentTypes{
				Department:  mapping.Department,
				ServiceCode: mapping.Category,
			}
			byDept[mapping.Department] = dept
		}
		dept.AppointmentTypes = append(dept.AppointmentTypes, label)
		if mapping.RequiresDVM {
			dept.RequiresDVM = true
		}
	}

	out := make([]DepartmentTypes, 0, len(byDept))
	for _, dept := range byDept {
		sort.Strings(dept.AppointmentTypes)
		out = append(out, *dept)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out
}
