package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// WriteDOCX writes a minimal WordprocessingML package.
func WriteDOCX(w io.Writer, m Memorandum) error {
	var body bytes.Buffer
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	writeRun(&body, m.Title, 36, true)
	for _, d := range m.Details {
		writeLabelled(&body, d.Label, d.Value)
	}
	if len(paragraphs(m.Summary)) > 0 {
		writeRun(&body, "Resumen", 28, true)
		for _, p := range paragraphs(m.Summary) {
			writeRun(&body, p, 22, false)
		}
	}
	for _, s := range m.Sections {
		writeRun(&body, s.Title, 28, true)
		for _, p := range paragraphs(s.Content) {
			writeRun(&body, p, 22, false)
		}
	}

	body.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr></w:body></w:document>`)

	zw := zip.NewWriter(w)
	files := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(relsXML)},
		{"word/document.xml", body.Bytes()},
	}
	for _, f := range files {
		fw, err := zw.Create(f.name)
		if err != nil {
			return err
		}
		if _, err := fw.Write(f.data); err != nil {
			return err
		}
	}
	return zw.Close()
}

// writeRun writes one paragraph; size is in half-points.
func writeRun(buf *bytes.Buffer, text string, size int, bold bool) {
	buf.WriteString(`<w:p><w:r><w:rPr>`)
	if bold {
		buf.WriteString(`<w:b/>`)
	}
	buf.WriteString(`<w:sz w:val="`)
	buf.WriteString(strconv.Itoa(size))
	buf.WriteString(`"/></w:rPr><w:t xml:space="preserve">`)
	xml.EscapeText(buf, []byte(text))
	buf.WriteString(`</w:t></w:r></w:p>`)
}

func writeLabelled(buf *bytes.Buffer, label, value string) {
	buf.WriteString(`<w:p><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">`)
	xml.EscapeText(buf, []byte(label+": "))
	buf.WriteString(`</w:t></w:r><w:r><w:t xml:space="preserve">`)
	xml.EscapeText(buf, []byte(value))
	buf.WriteString(`</w:t></w:r></w:p>`)
}
