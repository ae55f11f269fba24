package archio

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/gnames/dwcagent/pkg/ent/model"
	"github.com/google/uuid"
)

// EML 2.2.0 document, GBIF metadata profile. Optional sections are
// pointers so empty metadata simply disappears from the output.

type emlPara struct {
	Para string `xml:"para"`
}

type emlIndividual struct {
	GivenName string `xml:"givenName,omitempty"`
	SurName   string `xml:"surName"`
}

type emlUserID struct {
	Directory string `xml:"directory,attr"`
	Value     string `xml:",chardata"`
}

type emlPerson struct {
	Individual     emlIndividual `xml:"individualName"`
	ElectronicMail string        `xml:"electronicMailAddress,omitempty"`
	UserID         *emlUserID    `xml:"userId,omitempty"`
	Role           string        `xml:"role,omitempty"`
}

type emlCalendarDate struct {
	CalendarDate string `xml:"calendarDate"`
}

type emlRangeOfDates struct {
	BeginDate emlCalendarDate `xml:"beginDate"`
	EndDate   emlCalendarDate `xml:"endDate"`
}

type emlTemporal struct {
	RangeOfDates   *emlRangeOfDates `xml:"rangeOfDates,omitempty"`
	SingleDateTime *emlCalendarDate `xml:"singleDateTime,omitempty"`
}

type emlGeographic struct {
	Description string `xml:"geographicDescription"`
}

type emlTaxonomic struct {
	General string `xml:"generalTaxonomicCoverage"`
}

type emlCoverage struct {
	Geographic *emlGeographic `xml:"geographicCoverage,omitempty"`
	Temporal   *emlTemporal   `xml:"temporalCoverage,omitempty"`
	Taxonomic  *emlTaxonomic  `xml:"taxonomicCoverage,omitempty"`
}

type emlProject struct {
	Title     string      `xml:"title"`
	Personnel []emlPerson `xml:"personnel"`
}

type emlMethodStep struct {
	Description emlPara `xml:"description"`
}

type emlMethods struct {
	MethodStep emlMethodStep `xml:"methodStep"`
}

type emlDataset struct {
	Title              string       `xml:"title"`
	Creators           []emlPerson  `xml:"creator"`
	MetadataProviders  []emlPerson  `xml:"metadataProvider"`
	PubDate            string       `xml:"pubDate"`
	Language           string       `xml:"language"`
	Abstract           *emlPara     `xml:"abstract,omitempty"`
	IntellectualRights emlPara      `xml:"intellectualRights"`
	Coverage           *emlCoverage `xml:"coverage,omitempty"`
	Project            *emlProject  `xml:"project,omitempty"`
	Methods            *emlMethods  `xml:"methods,omitempty"`
}

type emlDoc struct {
	XMLName        xml.Name   `xml:"eml:eml"`
	XmlnsEml       string     `xml:"xmlns:eml,attr"`
	XmlnsXsi       string     `xml:"xmlns:xsi,attr"`
	SchemaLocation string     `xml:"xsi:schemaLocation,attr"`
	PackageID      string     `xml:"packageId,attr"`
	System         string     `xml:"system,attr"`
	Scope          string     `xml:"scope,attr"`
	Lang           string     `xml:"xml:lang,attr"`
	Dataset        emlDataset `xml:"dataset"`
}

const ccByRights = "This work is licensed under a Creative Commons " +
	"Attribution (CC-BY 4.0) License " +
	"http://creativecommons.org/licenses/by/4.0/legalcode"

// renderEML builds the eml.xml metadata document of a dataset.
func renderEML(ds *model.Dataset) ([]byte, error) {
	if ds.Title == "" {
		return nil, fmt.Errorf("dataset %d has no title", ds.ID)
	}

	doc := emlDoc{
		XmlnsEml: "https://eml.ecoinformatics.org/eml-2.2.0",
		XmlnsXsi: "http://www.w3.org/2001/XMLSchema-instance",
		SchemaLocation: "https://eml.ecoinformatics.org/eml-2.2.0 " +
			"https://rs.gbif.org/schema/eml-gbif-profile/1.3/eml.xsd",
		PackageID: uuid.New().String(),
		System:    "https://gbif.org",
		Scope:     "system",
		Lang:      langCode(ds.UserLanguage),
		Dataset: emlDataset{
			Title:              ds.Title,
			PubDate:            time.Now().Format("2006-01-02"),
			Language:           langCode(ds.UserLanguage),
			IntellectualRights: emlPara{Para: ccByRights},
		},
	}
	d := &doc.Dataset

	if ds.Description != "" {
		d.Abstract = &emlPara{Para: ds.Description}
	}

	users := ds.EML.Users
	if len(users) == 0 {
		users = []model.EMLUser{{FirstName: "Unknown", LastName: "User"}}
	}
	primary := person(users[0], "")
	d.Creators = []emlPerson{primary}
	d.MetadataProviders = []emlPerson{primary}
	for _, u := range users[1:] {
		d.Creators = append(d.Creators, person(u, ""))
	}
	if len(ds.EML.Users) > 0 {
		proj := &emlProject{Title: ds.Title}
		for _, u := range ds.EML.Users {
			proj.Personnel = append(
				proj.Personnel, person(u, "metadataProvider"))
		}
		d.Project = proj
	}

	d.Coverage = coverage(&ds.EML)

	if ds.EML.Methodology != "" {
		d.Methods = &emlMethods{
			MethodStep: emlMethodStep{
				Description: emlPara{Para: ds.EML.Methodology},
			},
		}
	}

	res, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), res...), nil
}

func person(u model.EMLUser, role string) emlPerson {
	res := emlPerson{
		Individual: emlIndividual{
			GivenName: u.FirstName,
			SurName:   u.LastName,
		},
		ElectronicMail: u.Email,
		Role:           role,
	}
	if u.ORCID != "" {
		res.UserID = &emlUserID{
			Directory: "https://orcid.org/",
			Value:     u.ORCID,
		}
	}
	return res
}

func coverage(e *model.EML) *emlCoverage {
	res := &emlCoverage{}
	if e.GeographicScope != "" {
		res.Geographic = &emlGeographic{Description: e.GeographicScope}
	}
	if e.TaxonomicScope != "" {
		res.Taxonomic = &emlTaxonomic{General: e.TaxonomicScope}
	}
	if e.TemporalScope != "" {
		res.Temporal = temporal(e.TemporalScope)
	}
	if res.Geographic == nil && res.Taxonomic == nil &&
		res.Temporal == nil {
		return nil
	}
	return res
}

// temporal detects a date range versus a single date. Ranges use the
// common separators people actually type.
func temporal(scope string) *emlTemporal {
	scope = strings.TrimSpace(scope)
	for _, sep := range []string{"/", " to ", " - ", "–"} {
		if !strings.Contains(scope, sep) {
			continue
		}
		parts := strings.SplitN(scope, sep, 2)
		return &emlTemporal{
			RangeOfDates: &emlRangeOfDates{
				BeginDate: emlCalendarDate{
					CalendarDate: strings.TrimSpace(parts[0]),
				},
				EndDate: emlCalendarDate{
					CalendarDate: strings.TrimSpace(parts[1]),
				},
			},
		}
	}
	return &emlTemporal{
		SingleDateTime: &emlCalendarDate{CalendarDate: scope},
	}
}
