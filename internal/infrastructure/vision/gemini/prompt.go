package gemini

import "github.com/amoghv/rollscan/internal/core/domain"

const headerPrompt = `Perform OCR on this image. It is the header/metadata page of an electoral
roll PDF. Respond with a single valid JSON object only, no extra text and no
code fences, with these keys:

- "roll_title": the main title line (e.g. "મતદારયાદી 2025 S06 ગુજરાત").
- "assembly_constituency": the full assembly constituency number and name
  ("વિધાનસભા મત વિભાગનો નંબર, નામ"), e.g. "160-સુરત ઉત્તર".
- "part_number": the part number ("ભાગ નંબર") from the top right, as a number.
- "revision_year": the revision year from the "સુધારાની વિગત" section.
- "qualification_date": the qualification date (e.g. "01-04-2024").
- "publication_date": the publication date (e.g. "10-04-2025").
- "locations": an array with the full text of EVERY location line from the
  part and polling area details section ("ભાગ અને મતદાન ક્ષેત્રની વિગત"), in order.
- "district": the district name.
- "taluka": the taluka name.
- "pin_code": the pin code.
- "polling_station": the polling station number and name.

Keep all extracted text in Gujarati exactly as printed. Use an empty string
(or empty array) for anything not present, but keep every key.`

const votersPrompt = `You are extracting voter entries from one page of an electoral roll PDF.
The page is a grid of voter boxes in rows and columns. Process it row by row,
left to right, and do not skip any box.

First identify the section name ("વિભાગ નામ") printed at the top of the page.

Then output ONE JSON object PER LINE (JSON Lines, no array, no code fences,
no other text), one line per voter box, with these keys:

- "serial_no": the serial number next to the box, as a number.
- "voter_name": all text after "મતદાનું નામ:" up to the next field label,
  joined into one complete full name.
- "relative_name": all text after "પિતાનું નામ:" / "પતિનું નામ:" /
  "માતાનું નામ:" up to the next field label; empty string if absent.
- "relation_type": "F" for પિતાનું નામ, "H" for પતિનું નામ, "M" for માતાનું નામ,
  otherwise "O".
- "house_no": the house number.
- "age": the age, as a number.
- "gender": the gender as printed.
- "idcard_no": the voter id card number (e.g. "SRV2111425",
  "GJ/21/141/006010"). A box without it is of no use; extract it carefully.
- "status_type": "D" if a DELETED stamp covers the box, "M" if a "#" precedes
  the serial number, otherwise "N".
- "box_no_on_page": the sequential position of the box on this page.
- "section_name": the section name you identified at the top, repeated on
  every line.
- "all_text": the raw text content of this voter's box.

Accuracy over speed: re-check the grid for missed boxes before finishing.`

const footerPrompt = `Perform OCR on this image. It is the final summary page of an electoral roll
PDF. Respond with a single valid JSON object only, no extra text and no code
fences, in this shape:

{
  "assembly_constituency": "<number and name, e.g. 160-સુરત ઉત્તર>",
  "part_number": <part number>,
  "rows": [
    {
      "description": "<row description text>",
      "male_count": <number>,
      "female_count": <number>,
      "other_gender_count": <number>,
      "total_count": <number>
    }
  ]
}

Include one entry in "rows" for every row of the voters summary table.`

func promptFor(kind domain.PageKind) string {
	switch kind {
	case domain.PageHeader:
		return headerPrompt
	case domain.PageFooter:
		return footerPrompt
	default:
		return votersPrompt
	}
}
