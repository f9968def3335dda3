package etherscan

// GasOracle is the result of the gastracker gasoracle action. Prices are
// decimal strings denominated in gwei.
type GasOracle struct {
	LastBlock       string `json:"LastBlock"`
	SafeGasPrice    string `json:"SafeGasPrice"`
	ProposeGasPrice string `json:"ProposeGasPrice"`
	FastGasPrice    string `json:"FastGasPrice"`
	SuggestBaseFee  string `json:"suggestBaseFee"`
	GasUsedRatio    string `json:"gasUsedRatio"`
}

// EthPrice is the result of the stats ethprice action.
type EthPrice struct {
	ETHBTC          string `json:"ethbtc"`
	ETHBTCTimestamp string `json:"ethbtc_timestamp"`
	ETHUSD          string `json:"ethusd"`
	ETHUSDTimestamp string `json:"ethusd_timestamp"`
}

// Transaction is a single entry of the account txlist action. Value is
// denominated in wei.
type Transaction struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	Nonce           string `json:"nonce"`
	BlockHash       string `json:"blockHash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	Gas             string `json:"gas"`
	GasPrice        string `json:"gasPrice"`
	GasUsed         string `json:"gasUsed"`
	IsError         string `json:"isError"`
	Input           string `json:"input,omitempty"`
	ContractAddress string `json:"contractAddress,omitempty"`
	FunctionName    string `json:"functionName,omitempty"`
}
