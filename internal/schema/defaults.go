package schema

// DefaultFields are the target fields of the road condition survey import.
var DefaultFields = []string{
	"ID", "ZENDI", "KLASSE", "NUMMER", "BUCHSTABE", "LAGE", "FS", "VNK", "NNK",
	"VST", "BST", "VKM", "BKM", "FSANZAHL", "FBANZAHL", "OD_FS", "BAULAST",
	"RADWEG_FLA", "RAD", "Bauw_3", "BREITE", "RIS", "RISK", "FLI", "FLIK",
	"SUB", "VER", "AUS", "SEN", "HEB", "RISG", "FLIG", "RSF", "KUN", "GEF",
	"G", "BAUW_PR", "DATUM_3", "Uhr_3", "ZWRIS", "ZWRISK", "ZWFLI", "ZWFLIK",
	"ZWSUB", "ZWVER", "ZWAUS", "ZWSEN", "ZWHEB", "ZWRISG", "ZWFLIG", "ZWKUN",
	"TWGEB", "TWSUB", "GW", "NIC_L", "NIC_R", "NIC", "ZWNIC", "FUNKTION",
	"BAUW", "DATUM_1A", "UHRZEIT_1A", "VM_1A", "AUN", "ZWAUN", "PGR_AVG",
	"PGR_MAX", "ZWPGR", "SBL", "DBL", "W", "LWI_FS", "RML_LWI_FS", "LWI_OD",
	"RML_LWI_OD", "ZWLWI", "S03", "S10", "S30", "LN", "K", "DATUM_1B",
	"UHRZEIT_1B", "VM_1B", "MSPTR", "MSPTL", "MSPT", "ZWSPT", "MSPHR", "MSPHL",
	"MSPH", "ZWSPH", "SSPTR", "SSPTL", "SSPHR", "SSPHL", "QN", "DATUM_2",
	"UHRZEIT_2", "VMIN_2", "GRI_40", "GRI_60", "GRI_80", "ZWGRI", "UHRZEIT_3",
	"VM_3", "RISS", "ZWRISS", "EFLI", "AFLI", "ZWAFLI", "ONA", "BIN", "RSFA",
	"ZWRSFA", "LQRL", "ZWLQRL", "LQRP", "ZWLQRP", "LQR", "ZWLQR", "EABF",
	"ZWEABF", "EABP", "ZWEABP", "EAB", "ZWEAB", "KASL", "ZWKASL", "KASP",
	"ZWKASP", "ZWKAS", "RSFB", "ZWRSFB", "NTR", "FUF", "BTE", "TWUM", "ZK",
	"MESSJAHR", "ZWAUN_15", "ZWLWI_15", "ZWDBL_15", "ZWSBL_15", "ZWBPL_15",
	"ZWSPT_15", "ZWSPH_15", "ZWGRI_15", "ZWRISS_15", "ZWFLI_15", "ZWAFLI_15",
	"ZWRISG_15", "ZWLQRL_15", "ZWLQRP_15", "ZWLQR_15", "ZWRSFB_15", "ZWRSFA_15",
	"TWE_15", "TWN_15", "TWEQLQ_15", "TWRIO_15", "GEB_15", "SUB_15", "GW_15",
	"OFS", "IRI", "ZWPGR_AVG", "ZWPGR_MAX", "ZWEFLI", "ZWONA", "ZWBIN", "ZWOFS",
	"ZWSCH", "ZWBORD", "ZWWURZ", "ZWRSF", "GEB",
}

var defaultSchema = MustNew(DefaultFields)

// Default returns the built-in schema.
func Default() *Schema {
	return defaultSchema
}
