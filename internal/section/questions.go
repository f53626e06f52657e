package section

// questions holds the per-key extraction instruction sent to the generation
// model. Each one is a tiny contract: the exact record shape wanted, which
// parts of the plan to prefer, and the rule that absent fields are omitted
// rather than guessed. Tuned against a corpus of state watershed plans.
var questions = map[Key]string{
	Identity: `identity: ReportIdentity — plan identity and metadata (extract ONLY if explicit; do not infer).

interface ReportIdentity {
  huc: string;        // Prefer 12-digit HUC (strip spaces/hyphens). Accept 8/10/12 if that is all that appears. Look in title/intro, Study Area text, tables, figure captions, and map labels.
  mwsId?: string;     // Internal watershed ID if explicitly named
  basinGroup?: string; // Basin group/name if explicitly stated
  subbasin?: string;  // Sub-basin name/code if explicitly stated
  planYear?: number;  // Final/approved/revised year (YYYY). Prefer explicit labels: "Final", "Approved", "Revised", "Issued"
  planType?: string;  // e.g. '9-Element', 'Nine-Element', 'Section 319', or 'Watershed Plan' (use the exact phrase appearing in text)
}

Rules: JSON only. Omit absent fields. Add _citations for each populated field.`,

	Pollutants: `pollutants: Pollutant[] — pollutants with loads/targets if provided. Prefer tables listing parameters and loads/limits.

interface Pollutant {
  name: string;                   // e.g. 'Sediment', 'TN', 'TP', 'TSS', 'E. coli', 'Bacteria'
  currentLoad?: number | string;  // Return a number when clearly numeric; else keep the exact string
  targetLoad?: number | string;   // Same rule as currentLoad
  unit?: string;                  // Units as shown (e.g. 'tons/yr', 'mg/L', 'cfu/100 mL')
}

Notes: Accept synonyms (Bacteria/E. coli; TP/PO4; TN/NO3 when explicitly mapped). Preserve units. Attach _citations per item.`,

	Goals: `goals: Goal[] — most often in "Action Plan", "Goals/Objectives", or strategy tables.

interface Goal {
  id: number;              // Row index starting at 1 when no explicit ID
  description: string;     // Copy the goal text plainly; remove decorative bullets
  completionRate: string;  // %, or qualitative ("Ongoing", "Complete", "In progress") exactly as stated
  category?: string;       // Thematic bucket like 'Sediment', 'Education', 'Riparian' if explicitly present
  targetDate?: string;     // If a date or period is explicitly given
  relatedPollutants?: string[]; // Only if explicitly linked
  successMetrics?: string[];    // KPIs/metrics if listed
}

Rules: Prefer table rows. If only prose/bullets exist, extract consistently. Add _citations per item.`,

	BMPs: `bmps: BMP[] — typically in "Cost Estimate", "Practices", or BMP tables. Use row-by-row extraction.

interface BMP {
  name: string;             // BMP name as in the table (e.g. 'Fencing', 'Grade Stabilization Structure')
  sizeAmount: number;       // Numeric quantity if clearly numeric; else omit
  sizeUnits: string;        // e.g. 'ea', 'ft', 'sq ft', 'ac'
  estimatedCost: number;    // Strip $ and commas if clearly numeric; if a range, omit
  estimatedCurrency: string; // Usually 'USD' unless explicitly different
  bmptype?: string;         // Structural/Non-structural, if a column provides it
  location?: { lat: number; lng: number } | string; // Only if explicitly stated
  expectedLoadReduction?: { pollutant: string; amount: number; unit: string }[];
  unitCost?: number;        // Only if a unit cost column exists
  lifecycleYears?: number;  // If lifespan stated
  oAndM?: string;           // Ops & maintenance notes if listed
}

Rules: Prioritize the official cost/practices table. Do not invent quantities. Add _citations per item.`,

	ImplementationActivities: `implementationActivities: ImplementationActivity[] — planned actions & timing; often in an implementation schedule table.

interface ImplementationActivity {
  id: number;          // Row index if no explicit ID
  description: string; // Plain action description
  timeline: string;    // Narrative/phase window (e.g. "Years 1-3")
  phase?: string;      // e.g. 'Phase 1', if present
  start?: string;      // Date string if explicit
  end?: string;        // Date string if explicit
  responsibleParties?: string[]; // Agencies/partners as listed
  dependencies?: number[];       // ID references if the schedule uses them
}

Notes: Prefer schedule tables. Keep date text as shown. Add _citations per item.`,

	MonitoringMetrics: `monitoringMetrics: MonitoringMetric[] — parameters, thresholds/criteria, frequency, and methods. Look for monitoring tables/sections.

interface MonitoringMetric {
  parameter: string;   // e.g. 'TSS', 'DO', 'Turbidity', 'E. coli', 'TN', 'TP'
  threshold: string;   // Numeric or narrative criterion exactly as stated
  method?: string;     // Sampling/analysis method if listed
  frequency?: string;  // e.g. 'monthly', 'quarterly'
  location?: { lat: number; lng: number } | string; // Station/description if explicit
  baseline?: number;   // If clearly numeric and labeled
  target?: number;     // If clearly numeric and labeled
  unit?: string;       // Units for numeric fields
}

Rules: Keep units; when not clearly numeric, keep values as strings in threshold. Add _citations per item.`,

	OutreachActivities: `outreachActivities: OutreachActivity[] — outreach/education actions. Often a separate table or bullets.

interface OutreachActivity {
  id: number;              // Row index if no explicit ID
  description: string;     // Outreach description
  intendedAudience: string; // e.g. 'landowners', 'K-12', 'producers'
  date?: string;           // Date or window if given
  location?: string;       // Venue/area
  budget?: number;         // Strip $/commas if numeric
  materials?: string[];    // Materials/media if listed
  partners?: string[];     // Partner orgs if listed
}

Notes: Prefer the outreach/education table if present. Add _citations per item.`,

	GeographicAreas: `geographicAreas: GeographicArea[] — named areas & sizes; look for HUC-12 names, reaches, subwatersheds, and maps/tables.

interface GeographicArea {
  name: string;            // Area name (HUC-12 name, creek reach, subwatershed)
  size: number;            // Numeric size if clearly numeric
  huc?: string;            // 8/10/12-digit HUC if listed for the area
  ecoregionLevel3?: string; // If explicitly mentioned
  ecoregionLevel4?: string; // If explicitly mentioned
  county?: string;         // County name(s) if specified
  centroid?: { lat: number; lng: number }; // Only if coordinates are given
  areaUnits?: string;      // Units for size ('acres', 'sq mi', 'ha')
}

Rules: Pull from area/summary tables and figure captions. If size is approximate or a range, keep it as text rather than forcing a number. Add _citations per item.`,

	Summary: `summary: string — a concise executive summary of the plan.

Write 3-6 sentences covering the watershed, the primary pollutants of concern,
the headline goals, and the implementation approach. Use only statements
supported by the provided context. Plain prose, no headings or bullets.`,
}

// Question returns the extraction instruction text for k, falling back to the
// key name itself so a missing entry still produces a usable prompt.
func (k Key) Question() string {
	if q, ok := questions[k]; ok {
		return q
	}
	return string(k)
}
